package kb

import (
	"fmt"

	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/units"
)

// FromTree reconstructs a SimData aggregate from its materialized tree, the
// inverse of materializing and snapshotting a build.
func FromTree(tree any) (*SimData, error) {
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sim data tree is %T, want a mapping", tree)
	}

	sd := &SimData{}
	var err error

	if sd.Transcription, err = transcriptionFromTree(root["Transcription"]); err != nil {
		return nil, err
	}
	if sd.Translation, err = translationFromTree(root["Translation"]); err != nil {
		return nil, err
	}
	if sd.Metabolism, err = metabolismFromTree(root["Metabolism"]); err != nil {
		return nil, err
	}
	if sd.MoleculeIDs, err = stringSlice(root["MoleculeIDs"], "MoleculeIDs"); err != nil {
		return nil, err
	}
	masses, ok := root["MoleculeMasses"].(*units.StructArray)
	if !ok {
		return nil, fmt.Errorf("MoleculeMasses is %T, want *units.StructArray", root["MoleculeMasses"])
	}
	sd.MoleculeMasses = masses
	return sd, nil
}

func transcriptionFromTree(v any) (*Transcription, error) {
	m, err := mapping(v, "Transcription")
	if err != nil {
		return nil, err
	}
	t := &Transcription{}
	if t.GeneIDs, err = stringSlice(m["GeneIDs"], "Transcription.GeneIDs"); err != nil {
		return nil, err
	}
	if t.RNAIDs, err = stringSlice(m["RNAIDs"], "Transcription.RNAIDs"); err != nil {
		return nil, err
	}
	if t.Sequences, err = seqSlice(m["Sequences"], "Transcription.Sequences"); err != nil {
		return nil, err
	}
	halfLives, ok := m["HalfLives"].(units.Quantity)
	if !ok {
		return nil, fmt.Errorf("Transcription.HalfLives is %T, want units.Quantity", m["HalfLives"])
	}
	t.HalfLives = halfLives
	switch expr := m["Expression"].(type) {
	case nil:
	case *interpolate.CubicSpline:
		t.Expression = expr
	default:
		return nil, fmt.Errorf("Transcription.Expression is %T, want *interpolate.CubicSpline", expr)
	}
	return t, nil
}

func translationFromTree(v any) (*Translation, error) {
	m, err := mapping(v, "Translation")
	if err != nil {
		return nil, err
	}
	t := &Translation{}
	if t.MonomerIDs, err = stringSlice(m["MonomerIDs"], "Translation.MonomerIDs"); err != nil {
		return nil, err
	}
	if t.RNAIDs, err = stringSlice(m["RNAIDs"], "Translation.RNAIDs"); err != nil {
		return nil, err
	}
	if t.Sequences, err = seqSlice(m["Sequences"], "Translation.Sequences"); err != nil {
		return nil, err
	}
	return t, nil
}

func metabolismFromTree(v any) (*Metabolism, error) {
	m, err := mapping(v, "Metabolism")
	if err != nil {
		return nil, err
	}
	met := &Metabolism{}
	if met.MetaboliteIDs, err = stringSlice(m["MetaboliteIDs"], "Metabolism.MetaboliteIDs"); err != nil {
		return nil, err
	}
	if met.ReactionIDs, err = stringSlice(m["ReactionIDs"], "Metabolism.ReactionIDs"); err != nil {
		return nil, err
	}
	if met.EnzymeIDs, err = stringSlice(m["EnzymeIDs"], "Metabolism.EnzymeIDs"); err != nil {
		return nil, err
	}
	stoich, ok := m["StoichMatrix"].(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("Metabolism.StoichMatrix is %T, want *ndarray.Array", m["StoichMatrix"])
	}
	met.StoichMatrix = stoich
	reversible, ok := m["Reversible"].(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("Metabolism.Reversible is %T, want *ndarray.Array", m["Reversible"])
	}
	met.Reversible = reversible
	return met, nil
}

func mapping(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want a mapping", path, v)
	}
	return m, nil
}

func stringSlice(v any, path string) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want a sequence", path, v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is %T, want string", path, i, item)
		}
		out[i] = s
	}
	return out, nil
}

func seqSlice(v any, path string) ([]bioseq.Seq, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want a sequence", path, v)
	}
	out := make([]bioseq.Seq, len(items))
	for i, item := range items {
		s, ok := item.(bioseq.Seq)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is %T, want bioseq.Seq", path, i, item)
		}
		out[i] = s
	}
	return out, nil
}
