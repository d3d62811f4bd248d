// Package wholecell is the embedding API over the knowledge-base toolkit:
// building fitted sim data from raw flat files, snapshotting it, diffing
// snapshots, size-profiling them, and deriving the causality network.
package wholecell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wholecell/internal/causality"
	"wholecell/internal/kb"
	"wholecell/internal/model"
	"wholecell/internal/objtree"
	"wholecell/internal/report"
	"wholecell/internal/sizeprof"
	"wholecell/internal/snapshot"
	"wholecell/internal/storage"
)

const (
	defaultDBPath = "wholecell.db"
	defaultOutDir = "out"
)

type Options struct {
	StoreKind string
	DBPath    string
	OutDir    string

	// Stdout receives comparison narration; defaults to os.Stdout.
	Stdout io.Writer
}

type Client struct {
	store  storage.Store
	outDir string
	stdout io.Writer

	initialized bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = defaultOutDir
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:  store,
		outDir: outDir,
		stdout: stdout,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

type BuildRequest struct {
	// ConfigPath names a YAML build configuration; when empty, DataDir with
	// the conventional file names is used instead.
	ConfigPath string
	DataDir    string
	OutDir     string
}

type BuildSummary struct {
	BuildID       string
	OutDir        string
	SnapshotPath  string
	GeneCount     int
	RNACount      int
	ProteinCount  int
	ReactionCount int
}

// Build loads the raw flat files, fits the knowledge base, snapshots it
// under <out>/kb/simData.snap, and records the build.
func (c *Client) Build(ctx context.Context, req BuildRequest) (BuildSummary, error) {
	if req.ConfigPath == "" && req.DataDir == "" {
		return BuildSummary{}, errors.New("build requires a config path or a data dir")
	}

	cfg := kb.DefaultConfig(req.DataDir)
	if req.ConfigPath != "" {
		loaded, err := kb.LoadConfig(req.ConfigPath)
		if err != nil {
			return BuildSummary{}, err
		}
		cfg = loaded
		if cfg.DataDir == "" {
			cfg.DataDir = req.DataDir
		}
	}

	raw, err := kb.LoadRaw(cfg)
	if err != nil {
		return BuildSummary{}, err
	}
	simData, err := kb.Build(raw)
	if err != nil {
		return BuildSummary{}, err
	}

	tree, err := objtree.Materialize(simData, objtree.Options{Path: "simData"})
	if err != nil {
		return BuildSummary{}, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.outDir
	}
	snapshotPath := snapshot.SimDataPath(outDir)
	if err := snapshot.Save(snapshotPath, tree); err != nil {
		return BuildSummary{}, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return BuildSummary{}, err
	}
	record := model.BuildRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:            uuid.NewString(),
		OutDir:        filepath.Clean(outDir),
		SnapshotPath:  snapshotPath,
		GeneCount:     len(simData.Transcription.GeneIDs),
		RNACount:      len(simData.Transcription.RNAIDs),
		ProteinCount:  len(simData.Translation.MonomerIDs),
		ReactionCount: len(simData.Metabolism.ReactionIDs),
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.store.SaveBuild(ctx, record); err != nil {
		return BuildSummary{}, err
	}

	return BuildSummary{
		BuildID:       record.ID,
		OutDir:        record.OutDir,
		SnapshotPath:  record.SnapshotPath,
		GeneCount:     record.GeneCount,
		RNACount:      record.RNACount,
		ProteinCount:  record.ProteinCount,
		ReactionCount: record.ReactionCount,
	}, nil
}

// CompareFiles diffs two snapshot files, printing to the client's stdout,
// and returns the diff line count.
func (c *Client) CompareFiles(path1, path2 string, printLines bool) (int, error) {
	return report.CompareFiles(c.stdout, path1, path2, printLines)
}

// CompareDirs diffs the same-named snapshot files in two directories and
// returns the total difference count.
func (c *Client) CompareDirs(dir1, dir2 string, printLines bool) (int, error) {
	return report.CompareDirs(c.stdout, dir1, dir2, printLines)
}

type NetworkRequest struct {
	SnapshotPath string
	OutDir       string

	// BuildID, when set, records the network summary against that build.
	BuildID string
}

type NetworkResult struct {
	OutDir    string
	NodeCount int
	EdgeCount int
}

// Network derives the causality network from a sim-data snapshot and writes
// its node/edge lists.
func (c *Client) Network(ctx context.Context, req NetworkRequest) (NetworkResult, error) {
	if req.SnapshotPath == "" {
		return NetworkResult{}, errors.New("network requires a snapshot path")
	}

	tree, err := snapshot.Load(req.SnapshotPath)
	if err != nil {
		return NetworkResult{}, err
	}
	simData, err := kb.FromTree(tree)
	if err != nil {
		return NetworkResult{}, fmt.Errorf("reconstruct sim data: %w", err)
	}
	network, err := causality.Build(simData)
	if err != nil {
		return NetworkResult{}, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Join(c.outDir, "network")
	}
	if err := network.Export(outDir); err != nil {
		return NetworkResult{}, err
	}

	if req.BuildID != "" {
		if err := c.ensureStore(ctx); err != nil {
			return NetworkResult{}, err
		}
		summary := model.NetworkSummary{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			BuildID:   req.BuildID,
			NodeCount: len(network.Nodes),
			EdgeCount: len(network.Edges),
		}
		if err := c.store.SaveNetworkSummary(ctx, summary); err != nil {
			return NetworkResult{}, err
		}
	}

	return NetworkResult{
		OutDir:    filepath.Clean(outDir),
		NodeCount: len(network.Nodes),
		EdgeCount: len(network.Edges),
	}, nil
}

// SizeProfile loads a snapshot and sizes its tree with the given cutoff in
// MB; a zero cutoff means the default.
func (c *Client) SizeProfile(snapshotPath string, cutoffMB float64) (sizeprof.Report, error) {
	tree, err := snapshot.Load(snapshotPath)
	if err != nil {
		return sizeprof.Report{}, err
	}
	if cutoffMB == 0 {
		return sizeprof.Tree(tree), nil
	}
	return sizeprof.TreeWithCutoff(tree, cutoffMB), nil
}

// ListBuilds returns all recorded builds, oldest first.
func (c *Client) ListBuilds(ctx context.Context) ([]model.BuildRecord, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	return c.store.ListBuilds(ctx)
}

// GetNetworkSummary looks up a recorded network summary for a build.
func (c *Client) GetNetworkSummary(ctx context.Context, buildID string) (model.NetworkSummary, bool, error) {
	if err := c.ensureStore(ctx); err != nil {
		return model.NetworkSummary{}, false, err
	}
	return c.store.GetNetworkSummary(ctx, buildID)
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
