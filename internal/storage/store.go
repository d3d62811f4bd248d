package storage

import (
	"context"

	"wholecell/internal/model"
)

// Store defines persistence operations for build artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveBuild(ctx context.Context, build model.BuildRecord) error
	GetBuild(ctx context.Context, id string) (model.BuildRecord, bool, error)
	ListBuilds(ctx context.Context) ([]model.BuildRecord, error)
	SaveNetworkSummary(ctx context.Context, summary model.NetworkSummary) error
	GetNetworkSummary(ctx context.Context, buildID string) (model.NetworkSummary, bool, error)
}
