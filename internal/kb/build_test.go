package kb

import (
	"math"
	"strings"
	"testing"

	"wholecell/internal/model"
	"wholecell/internal/ndarray"
)

func testRaw() *Raw {
	return &Raw{
		Genes: []model.Gene{
			{ID: "G2", Sequence: "ATGAAA", RNAID: "R2"},
			{ID: "G1", Sequence: "ATGGCTTAA", RNAID: "R1", MonomerID: "P1", HalfLifeS: 120},
		},
		Metabolites: []model.Metabolite{
			{ID: "glc", MassDa: 180.16},
			{ID: "atp", MassDa: 507.18},
			{ID: "adp", MassDa: 427.20},
		},
		Reactions: []model.Reaction{
			{ID: "rxn_hex", Stoichiometry: map[string]float64{"glc": -1, "atp": -1, "adp": 1}, EnzymeID: "P1"},
			{ID: "rxn_adk", Stoichiometry: map[string]float64{"atp": 1, "adp": -2}, Reversible: true},
		},
		Expression: map[string][]model.ExpressionPoint{
			"R1": {{TimeS: 0, Level: 1}, {TimeS: 10, Level: 2}, {TimeS: 20, Level: 3}},
			"R2": {{TimeS: 0, Level: 3}, {TimeS: 10, Level: 2}, {TimeS: 20, Level: 1}},
		},
	}
}

func TestBuildTranscription(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tx := sd.Transcription
	// Genes are processed in ID order regardless of input order.
	if got := strings.Join(tx.GeneIDs, ","); got != "G1,G2" {
		t.Fatalf("gene ids: got %q", got)
	}
	if tx.Sequences[0].Data != "AUGGCUUAA" {
		t.Fatalf("transcript: got %q", tx.Sequences[0].Data)
	}

	arr, ok := tx.HalfLives.AsNumber().(*ndarray.Array)
	if !ok {
		t.Fatalf("half lives payload: %T", tx.HalfLives.AsNumber())
	}
	if arr.Floats[0] != 120 {
		t.Fatalf("curated half life: got %v", arr.Floats[0])
	}
	if arr.Floats[1] != DefaultHalfLifeS {
		t.Fatalf("default half life: got %v", arr.Floats[1])
	}

	if tx.Expression == nil {
		t.Fatal("expected fitted expression curve")
	}
	// Both transcripts average to level 2 at t=10.
	if got := tx.Expression.Eval(10); math.Abs(got-2) > 1e-9 {
		t.Fatalf("expression at t=10: got %v", got)
	}
}

func TestBuildTranslation(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tr := sd.Translation
	if len(tr.MonomerIDs) != 1 || tr.MonomerIDs[0] != "P1" {
		t.Fatalf("monomer ids: got %v", tr.MonomerIDs)
	}
	if tr.Sequences[0].Data != "MA" {
		t.Fatalf("peptide: got %q", tr.Sequences[0].Data)
	}
}

func TestBuildMetabolism(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	m := sd.Metabolism
	// Reactions are sorted by ID: rxn_adk then rxn_hex.
	if got := strings.Join(m.ReactionIDs, ","); got != "rxn_adk,rxn_hex" {
		t.Fatalf("reaction ids: got %q", got)
	}
	if got := m.StoichMatrix.Shape; got[0] != 3 || got[1] != 2 {
		t.Fatalf("stoich shape: got %v", got)
	}

	metIndex := map[string]int{}
	for i, id := range m.MetaboliteIDs {
		metIndex[id] = i
	}
	nRxn := len(m.ReactionIDs)
	at := func(met string, rxn int) float64 {
		return m.StoichMatrix.Floats[metIndex[met]*nRxn+rxn]
	}
	if at("glc", 1) != -1 || at("adp", 1) != 1 {
		t.Fatalf("hexokinase column wrong: glc=%v adp=%v", at("glc", 1), at("adp", 1))
	}
	if at("adp", 0) != -2 || at("atp", 0) != 1 {
		t.Fatalf("adenylate kinase column wrong: adp=%v atp=%v", at("adp", 0), at("atp", 0))
	}
	if !m.Reversible.Bools[0] || m.Reversible.Bools[1] {
		t.Fatalf("reversible flags: got %v", m.Reversible.Bools)
	}
	if m.EnzymeIDs[1] != "P1" || m.EnzymeIDs[0] != "" {
		t.Fatalf("enzyme ids: got %v", m.EnzymeIDs)
	}
}

func TestBuildMasses(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// RNAs, then monomers, then metabolites.
	want := []string{"R1", "R2", "P1", "glc", "atp", "adp"}
	if got := strings.Join(sd.MoleculeIDs, ","); got != strings.Join(want, ",") {
		t.Fatalf("molecule ids: got %q", got)
	}
	if sd.MoleculeMasses.Rows() != len(want) {
		t.Fatalf("mass rows: got %d", sd.MoleculeMasses.Rows())
	}

	// Peptide MA: Met + Ala residues plus one water.
	wantMass := 131.19 + 71.08 + 18.02
	got := sd.MoleculeMasses.Array.Floats[2]
	if math.Abs(got-wantMass) > 1e-9 {
		t.Fatalf("peptide mass: got %v want %v", got, wantMass)
	}
	if sd.MoleculeMasses.Array.Floats[3] != 180.16 {
		t.Fatalf("metabolite mass: got %v", sd.MoleculeMasses.Array.Floats[3])
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	raw := testRaw()
	raw.Genes[0].RNAID = "R1"
	if _, err := Build(raw); err == nil || !strings.Contains(err.Error(), "duplicate rna id") {
		t.Fatalf("duplicate rna: got %v", err)
	}

	raw = testRaw()
	raw.Genes[0].Sequence = "ATGXAA"
	if _, err := Build(raw); err == nil || !strings.Contains(err.Error(), "unexpected base") {
		t.Fatalf("bad base: got %v", err)
	}

	raw = testRaw()
	raw.Reactions[0].Stoichiometry["nosuch"] = 1
	if _, err := Build(raw); err == nil || !strings.Contains(err.Error(), "unknown metabolite") {
		t.Fatalf("unknown metabolite: got %v", err)
	}

	raw = testRaw()
	raw.Genes[1].Sequence = "AT"
	if _, err := Build(raw); err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("short transcript: got %v", err)
	}
}

func TestFitExpressionNeedsThreeTimes(t *testing.T) {
	raw := testRaw()
	raw.Expression = map[string][]model.ExpressionPoint{
		"R1": {{TimeS: 0, Level: 1}, {TimeS: 10, Level: 2}},
	}
	sd, err := Build(raw)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sd.Transcription.Expression != nil {
		t.Fatal("expected no fitted curve for two sample times")
	}
}
