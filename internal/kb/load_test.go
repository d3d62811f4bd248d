package kb

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeTestData(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "genes.yaml", `genes:
  - id: G1
    symbol: thrA
    sequence: ATGGCTTAA
    rna_id: R1
    monomer_id: P1
    half_life_s: 120
  - id: G2
    sequence: ATGAAA
    rna_id: R2
`)
	writeFile(t, dir, "metabolites.yaml", `metabolites:
  - id: glc
    name: glucose
    mass_da: 180.16
`)
	writeFile(t, dir, "reactions.yaml", `reactions:
  - id: rxn1
    stoichiometry:
      glc: -1
    reversible: true
    enzyme_id: P1
`)
	writeFile(t, dir, "expression.yaml", `expression:
  R1:
    - time_s: 0
      level: 1
    - time_s: 10
      level: 2
`)
}

func TestLoadRaw(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	raw, err := LoadRaw(DefaultConfig(dir))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw.Genes) != 2 || raw.Genes[0].ID != "G1" {
		t.Fatalf("genes: got %+v", raw.Genes)
	}
	if raw.Genes[0].HalfLifeS != 120 || raw.Genes[0].MonomerID != "P1" {
		t.Fatalf("gene fields: got %+v", raw.Genes[0])
	}
	if len(raw.Metabolites) != 1 || raw.Metabolites[0].MassDa != 180.16 {
		t.Fatalf("metabolites: got %+v", raw.Metabolites)
	}
	if len(raw.Reactions) != 1 || raw.Reactions[0].Stoichiometry["glc"] != -1 {
		t.Fatalf("reactions: got %+v", raw.Reactions)
	}
	if !raw.Reactions[0].Reversible {
		t.Fatal("reversible flag lost")
	}
	if len(raw.Expression["R1"]) != 2 || raw.Expression["R1"][1].Level != 2 {
		t.Fatalf("expression: got %+v", raw.Expression)
	}
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "build.yaml", "data_dir: "+dir+"\ngenes: curated_genes.yaml\n")

	cfg, err := LoadConfig(filepath.Join(dir, "build.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataDir != dir {
		t.Fatalf("data dir: got %q", cfg.DataDir)
	}
	if cfg.Genes != "curated_genes.yaml" {
		t.Fatalf("genes: got %q", cfg.Genes)
	}
	if cfg.Metabolites != "metabolites.yaml" || cfg.Expression != "expression.yaml" {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestLoadRawMissingFile(t *testing.T) {
	if _, err := LoadRaw(DefaultConfig(t.TempDir())); err == nil {
		t.Fatal("expected error for missing flat files")
	}
}
