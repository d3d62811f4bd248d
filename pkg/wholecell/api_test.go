package wholecell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataDir(t *testing.T, halfLife string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"genes.yaml": `genes:
  - id: G1
    sequence: ATGGCTTAA
    rna_id: R1
    monomer_id: P1
    half_life_s: ` + halfLife + `
  - id: G2
    sequence: ATGAAA
    rna_id: R2
`,
		"metabolites.yaml": `metabolites:
  - id: glc
    mass_da: 180.16
  - id: g6p
    mass_da: 260.14
`,
		"reactions.yaml": `reactions:
  - id: rxn1
    stoichiometry:
      glc: -1
      g6p: 1
    enzyme_id: P1
`,
		"expression.yaml": `expression:
  R1:
    - time_s: 0
      level: 1
    - time_s: 10
      level: 2
    - time_s: 20
      level: 3
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestClient(t *testing.T, out *bytes.Buffer) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind: "memory",
		OutDir:    filepath.Join(t.TempDir(), "out"),
		Stdout:    out,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestBuildWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, &bytes.Buffer{})

	summary, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.GeneCount != 2 || summary.RNACount != 2 || summary.ProteinCount != 1 || summary.ReactionCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(summary.SnapshotPath); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}

	builds, err := client.ListBuilds(ctx)
	if err != nil {
		t.Fatalf("list builds: %v", err)
	}
	if len(builds) != 1 || builds[0].ID != summary.BuildID {
		t.Fatalf("unexpected builds: %+v", builds)
	}
}

func TestBuildRequiresInput(t *testing.T) {
	client := newTestClient(t, &bytes.Buffer{})
	if _, err := client.Build(context.Background(), BuildRequest{}); err == nil {
		t.Fatal("expected error without config path or data dir")
	}
}

func TestCompareIdenticalBuilds(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	client := newTestClient(t, &out)

	data := writeDataDir(t, "120")
	first, err := client.Build(ctx, BuildRequest{DataDir: data, OutDir: filepath.Join(t.TempDir(), "a")})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := client.Build(ctx, BuildRequest{DataDir: data, OutDir: filepath.Join(t.TempDir(), "b")})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	count, err := client.CompareFiles(first.SnapshotPath, second.SnapshotPath, true)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected identical snapshots, got %d diff lines:\n%s", count, out.String())
	}
}

func TestCompareDivergentBuilds(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	client := newTestClient(t, &out)

	first, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120"), OutDir: filepath.Join(t.TempDir(), "a")})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "240"), OutDir: filepath.Join(t.TempDir(), "b")})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	count, err := client.CompareFiles(first.SnapshotPath, second.SnapshotPath, false)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if count == 0 {
		t.Fatal("expected differences between divergent builds")
	}
	if !strings.Contains(out.String(), "lines of differences") {
		t.Fatalf("missing count line:\n%s", out.String())
	}
}

func TestCompareDirs(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	client := newTestClient(t, &out)

	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")
	if _, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120"), OutDir: dirA}); err != nil {
		t.Fatalf("build a: %v", err)
	}
	if _, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120"), OutDir: dirB}); err != nil {
		t.Fatalf("build b: %v", err)
	}

	kbA, kbB := filepath.Join(dirA, "kb"), filepath.Join(dirB, "kb")
	count, err := client.CompareDirs(kbA, kbB, false)
	if err != nil {
		t.Fatalf("compare dirs: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected identical directories, got %d:\n%s", count, out.String())
	}
	if !strings.Contains(out.String(), "Comparing snapshot files in") {
		t.Fatalf("missing narration:\n%s", out.String())
	}
}

func TestNetworkFromSnapshot(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, &bytes.Buffer{})

	summary, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	netDir := filepath.Join(t.TempDir(), "network")
	result, err := client.Network(ctx, NetworkRequest{
		SnapshotPath: summary.SnapshotPath,
		OutDir:       netDir,
		BuildID:      summary.BuildID,
	})
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	if result.NodeCount == 0 || result.EdgeCount == 0 {
		t.Fatalf("empty network: %+v", result)
	}
	for _, name := range []string{"nodes.tsv", "edges.tsv", "network.json"} {
		if _, err := os.Stat(filepath.Join(netDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	recorded, ok, err := client.GetNetworkSummary(ctx, summary.BuildID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok || recorded.NodeCount != result.NodeCount {
		t.Fatalf("unexpected recorded summary: ok=%v %+v", ok, recorded)
	}
}

func TestSizeProfile(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, &bytes.Buffer{})

	summary, err := client.Build(ctx, BuildRequest{DataDir: writeDataDir(t, "120")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	profile, err := client.SizeProfile(summary.SnapshotPath, 0)
	if err != nil {
		t.Fatalf("size profile: %v", err)
	}
	if profile.MB <= 0 {
		t.Fatalf("expected positive size, got %v", profile.MB)
	}
}
