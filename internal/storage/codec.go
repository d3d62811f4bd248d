package storage

import (
	"encoding/json"
	"errors"

	"wholecell/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeBuild(b model.BuildRecord) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBuild(data []byte) (model.BuildRecord, error) {
	var build model.BuildRecord
	if err := json.Unmarshal(data, &build); err != nil {
		return model.BuildRecord{}, err
	}
	if err := checkVersion(build.VersionedRecord); err != nil {
		return model.BuildRecord{}, err
	}
	return build, nil
}

func EncodeNetworkSummary(s model.NetworkSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeNetworkSummary(data []byte) (model.NetworkSummary, error) {
	var summary model.NetworkSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.NetworkSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.NetworkSummary{}, err
	}
	return summary, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
