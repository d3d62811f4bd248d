//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"wholecell/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveBuild(ctx context.Context, build model.BuildRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeBuild(build)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO builds (id, schema_version, codec_version, created_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, build.ID, build.SchemaVersion, build.CodecVersion, build.CreatedAt.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) GetBuild(ctx context.Context, id string) (model.BuildRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.BuildRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM builds WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BuildRecord{}, false, nil
		}
		return model.BuildRecord{}, false, err
	}

	build, err := DecodeBuild(payload)
	if err != nil {
		return model.BuildRecord{}, false, fmt.Errorf("decode build %s: %w", id, err)
	}
	return build, true, nil
}

func (s *SQLiteStore) ListBuilds(ctx context.Context) ([]model.BuildRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM builds ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []model.BuildRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		build, err := DecodeBuild(payload)
		if err != nil {
			return nil, fmt.Errorf("decode build: %w", err)
		}
		builds = append(builds, build)
	}
	return builds, rows.Err()
}

func (s *SQLiteStore) SaveNetworkSummary(ctx context.Context, summary model.NetworkSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeNetworkSummary(summary)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO networks (build_id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(build_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, summary.BuildID, summary.SchemaVersion, summary.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetNetworkSummary(ctx context.Context, buildID string) (model.NetworkSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.NetworkSummary{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM networks WHERE build_id = ?`, buildID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NetworkSummary{}, false, nil
		}
		return model.NetworkSummary{}, false, err
	}

	summary, err := DecodeNetworkSummary(payload)
	if err != nil {
		return model.NetworkSummary{}, false, fmt.Errorf("decode network summary %s: %w", buildID, err)
	}
	return summary, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS networks (
			build_id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
