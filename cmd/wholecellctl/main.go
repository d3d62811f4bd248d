package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"wholecell/internal/diff"
	"wholecell/internal/snapshot"
	"wholecell/internal/storage"
	wcapi "wholecell/pkg/wholecell"
)

// Exit code when any compared snapshots differ.
const exitDifferences = 3

var errDifferences = errors.New("differences found")

func main() {
	err := run(context.Background(), os.Args[1:])
	if err == nil {
		return
	}
	if errors.Is(err, errDifferences) {
		os.Exit(exitDifferences)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:])
	case "network":
		return runNetwork(ctx, args[1:])
	case "compare":
		return runCompare(ctx, args[1:])
	case "size":
		return runSize(ctx, args[1:])
	case "builds":
		return runBuilds(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: wholecellctl <build|network|compare|size|builds> [flags]", msg)
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	dataDir := fs.String("data", "", "directory of raw curated flat files")
	configPath := fs.String("config", "", "YAML build configuration path")
	outDir := fs.String("out", "out", "output directory for the snapshot")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "wholecell.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := wcapi.New(wcapi.Options{StoreKind: *storeKind, DBPath: *dbPath, OutDir: *outDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Build(ctx, wcapi.BuildRequest{
		ConfigPath: *configPath,
		DataDir:    *dataDir,
		OutDir:     *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("built id=%s genes=%d rnas=%d proteins=%d reactions=%d snapshot=%s\n",
		summary.BuildID, summary.GeneCount, summary.RNACount, summary.ProteinCount,
		summary.ReactionCount, summary.SnapshotPath)
	return nil
}

func runNetwork(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("network", flag.ContinueOnError)
	snapshotPath := fs.String("snapshot", "", "sim-data snapshot path")
	outDir := fs.String("out", "", "directory for node/edge lists")
	buildID := fs.String("build-id", "", "record the network summary against this build")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "wholecell.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *snapshotPath == "" && fs.NArg() == 1 {
		*snapshotPath = fs.Arg(0)
	}
	if *snapshotPath == "" {
		return usageError("network requires -snapshot or one snapshot path argument")
	}

	client, err := wcapi.New(wcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Network(ctx, wcapi.NetworkRequest{
		SnapshotPath: *snapshotPath,
		OutDir:       *outDir,
		BuildID:      *buildID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("network nodes=%d edges=%d out=%s\n", result.NodeCount, result.EdgeCount, result.OutDir)
	return nil
}

func runCompare(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	var countOnly, finalSimData bool
	fs.BoolVar(&countOnly, "count", false, "print just the diff line count for each file")
	fs.BoolVar(&countOnly, "c", false, "shorthand for -count")
	fs.BoolVar(&finalSimData, "final-sim-data", false, "append kb/simData.snap to both paths")
	fs.BoolVar(&finalSimData, "f", false, "shorthand for -final-sim-data")
	nulp := fs.Int64("nulp", diff.Tolerance(), "float comparison tolerance in units in the last place")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usageError("compare requires exactly two paths")
	}
	diff.SetTolerance(*nulp)

	path1, path2 := fs.Arg(0), fs.Arg(1)
	if finalSimData {
		path1 = snapshot.SimDataPath(path1)
		path2 = snapshot.SimDataPath(path2)
	}

	client, err := wcapi.New(wcapi.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var diffCount int
	if isFile(path1) {
		diffCount, err = client.CompareFiles(path1, path2, !countOnly)
	} else {
		diffCount, err = client.CompareDirs(path1, path2, !countOnly)
	}
	if err != nil {
		return err
	}
	if diffCount > 0 {
		return errDifferences
	}
	return nil
}

func runSize(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("size", flag.ContinueOnError)
	cutoff := fs.Float64("cutoff", 0, "breakdown threshold in MB (0 means the default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("size requires exactly one snapshot path")
	}

	client, err := wcapi.New(wcapi.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	profile, err := client.SizeProfile(fs.Arg(0), *cutoff)
	if err != nil {
		return err
	}
	printSizeReport(os.Stdout, fs.Arg(0), profile)
	return nil
}

func runBuilds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("builds", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "wholecell.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := wcapi.New(wcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	builds, err := client.ListBuilds(ctx)
	if err != nil {
		return err
	}
	for _, b := range builds {
		fmt.Printf("build id=%s created=%s genes=%d rnas=%d proteins=%d reactions=%d snapshot=%s\n",
			b.ID, b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), b.GeneCount, b.RNACount,
			b.ProteinCount, b.ReactionCount, b.SnapshotPath)
	}
	fmt.Printf("total builds=%d\n", len(builds))
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
