package kb

import (
	"fmt"
	"sort"
	"strings"

	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/units"

	"wholecell/internal/model"
)

// DefaultHalfLifeS applies to transcripts without a curated half life.
const DefaultHalfLifeS = 300.0

// Average residue masses in g/mol for ribonucleotides in a transcript.
var nucleotideMassDa = map[byte]float64{
	'A': 329.2,
	'C': 305.2,
	'G': 345.2,
	'U': 306.2,
}

// Average residue masses in g/mol for amino acids in a peptide.
var aminoAcidMassDa = map[byte]float64{
	'A': 71.08, 'R': 156.19, 'N': 114.10, 'D': 115.09, 'C': 103.14,
	'E': 129.12, 'Q': 128.13, 'G': 57.05, 'H': 137.14, 'I': 113.16,
	'L': 113.16, 'K': 128.17, 'M': 131.19, 'F': 147.18, 'P': 97.12,
	'S': 87.08, 'T': 101.10, 'W': 186.21, 'Y': 163.18, 'V': 99.13,
}

const waterMassDa = 18.02

func secondUnit() units.Unit {
	return units.NewUnit(1, map[string]int{"s": 1})
}

func gramsPerMolUnit() units.Unit {
	return units.NewUnit(1, map[string]int{"g": 1, "mol": -1})
}

// Build assembles the fitted SimData aggregate from raw curated data. Genes
// are processed in ID order so repeated builds from the same inputs produce
// identical aggregates.
func Build(raw *Raw) (*SimData, error) {
	genes := append([]model.Gene(nil), raw.Genes...)
	sort.Slice(genes, func(i, j int) bool { return genes[i].ID < genes[j].ID })

	transcription, err := buildTranscription(genes, raw.Expression)
	if err != nil {
		return nil, err
	}
	translation, err := buildTranslation(genes, transcription)
	if err != nil {
		return nil, err
	}
	metabolism, err := buildMetabolism(raw)
	if err != nil {
		return nil, err
	}
	moleculeIDs, masses := buildMasses(transcription, translation, raw.Metabolites)

	return &SimData{
		Transcription:  transcription,
		Translation:    translation,
		Metabolism:     metabolism,
		MoleculeIDs:    moleculeIDs,
		MoleculeMasses: masses,
	}, nil
}

func buildTranscription(genes []model.Gene, expression map[string][]model.ExpressionPoint) (*Transcription, error) {
	t := &Transcription{}
	seen := make(map[string]struct{}, len(genes))
	halfLives := make([]float64, 0, len(genes))

	for _, gene := range genes {
		if gene.RNAID == "" {
			return nil, fmt.Errorf("gene %s has no rna id", gene.ID)
		}
		if _, dup := seen[gene.RNAID]; dup {
			return nil, fmt.Errorf("duplicate rna id %s", gene.RNAID)
		}
		seen[gene.RNAID] = struct{}{}

		rna, err := transcribe(gene)
		if err != nil {
			return nil, err
		}
		t.GeneIDs = append(t.GeneIDs, gene.ID)
		t.RNAIDs = append(t.RNAIDs, gene.RNAID)
		t.Sequences = append(t.Sequences, rna)

		hl := gene.HalfLifeS
		if hl == 0 {
			hl = DefaultHalfLifeS
		}
		halfLives = append(halfLives, hl)
	}

	hlArray, err := ndarray.NewFloat64([]int{len(halfLives)}, halfLives)
	if err != nil {
		return nil, err
	}
	t.HalfLives = units.NewArrayQuantity(hlArray, secondUnit())

	spline, err := fitExpression(expression)
	if err != nil {
		return nil, err
	}
	t.Expression = spline
	return t, nil
}

// transcribe validates the coding strand and produces the transcript.
func transcribe(gene model.Gene) (bioseq.Seq, error) {
	seq := strings.ToUpper(gene.Sequence)
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return bioseq.Seq{}, fmt.Errorf("gene %s: unexpected base %q at %d", gene.ID, seq[i], i)
		}
	}
	return bioseq.New(seq).Transcribe(), nil
}

func buildTranslation(genes []model.Gene, t *Transcription) (*Translation, error) {
	tr := &Translation{}
	for i, gene := range genes {
		if gene.MonomerID == "" {
			continue
		}
		peptide, err := translate(t.Sequences[i].Data)
		if err != nil {
			return nil, fmt.Errorf("gene %s: %w", gene.ID, err)
		}
		tr.MonomerIDs = append(tr.MonomerIDs, gene.MonomerID)
		tr.RNAIDs = append(tr.RNAIDs, gene.RNAID)
		tr.Sequences = append(tr.Sequences, bioseq.New(peptide))
	}
	return tr, nil
}

// translate reads codons from the first position to the first stop codon.
func translate(rna string) (string, error) {
	if len(rna) < 3 {
		return "", fmt.Errorf("transcript too short to translate: %d nt", len(rna))
	}
	var peptide strings.Builder
	for i := 0; i+3 <= len(rna); i += 3 {
		codon := rna[i : i+3]
		aa, ok := codonTable[codon]
		if !ok {
			return "", fmt.Errorf("unknown codon %q at %d", codon, i)
		}
		if aa == stopCodon {
			break
		}
		peptide.WriteByte(aa)
	}
	if peptide.Len() == 0 {
		return "", fmt.Errorf("transcript yields an empty peptide")
	}
	return peptide.String(), nil
}

func buildMetabolism(raw *Raw) (*Metabolism, error) {
	m := &Metabolism{}

	metaboliteIndex := make(map[string]int, len(raw.Metabolites))
	for _, met := range raw.Metabolites {
		if _, dup := metaboliteIndex[met.ID]; dup {
			return nil, fmt.Errorf("duplicate metabolite id %s", met.ID)
		}
		metaboliteIndex[met.ID] = len(m.MetaboliteIDs)
		m.MetaboliteIDs = append(m.MetaboliteIDs, met.ID)
	}

	reactions := append([]model.Reaction(nil), raw.Reactions...)
	sort.Slice(reactions, func(i, j int) bool { return reactions[i].ID < reactions[j].ID })

	nMet, nRxn := len(m.MetaboliteIDs), len(reactions)
	stoich := make([]float64, nMet*nRxn)
	reversible := make([]bool, nRxn)
	for j, rxn := range reactions {
		m.ReactionIDs = append(m.ReactionIDs, rxn.ID)
		m.EnzymeIDs = append(m.EnzymeIDs, rxn.EnzymeID)
		reversible[j] = rxn.Reversible
		for metID, coeff := range rxn.Stoichiometry {
			i, ok := metaboliteIndex[metID]
			if !ok {
				return nil, fmt.Errorf("reaction %s references unknown metabolite %s", rxn.ID, metID)
			}
			stoich[i*nRxn+j] = coeff
		}
	}

	var err error
	m.StoichMatrix, err = ndarray.NewFloat64([]int{nMet, nRxn}, stoich)
	if err != nil {
		return nil, err
	}
	m.Reversible, err = ndarray.NewBool([]int{nRxn}, reversible)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// buildMasses tabulates molecular masses for every molecule in the model:
// transcripts, monomers, then metabolites.
func buildMasses(t *Transcription, tr *Translation, metabolites []model.Metabolite) ([]string, *units.StructArray) {
	var ids []string
	var masses []float64

	for i, rnaID := range t.RNAIDs {
		ids = append(ids, rnaID)
		masses = append(masses, polymerMass(t.Sequences[i].Data, nucleotideMassDa))
	}
	for i, monomerID := range tr.MonomerIDs {
		ids = append(ids, monomerID)
		masses = append(masses, polymerMass(tr.Sequences[i].Data, aminoAcidMassDa))
	}
	for _, met := range metabolites {
		ids = append(ids, met.ID)
		masses = append(masses, met.MassDa)
	}

	arr, err := ndarray.NewFloat64([]int{len(masses)}, masses)
	if err != nil {
		// Lengths are constructed consistently above.
		panic(err)
	}
	sa := units.NewStructArray(arr, map[string]units.Unit{"mass": gramsPerMolUnit()})
	return ids, sa
}

func polymerMass(seq string, residueMass map[byte]float64) float64 {
	total := waterMassDa
	for i := 0; i < len(seq); i++ {
		total += residueMass[seq[i]]
	}
	return total
}

// fitExpression averages the sampled expression levels per time point across
// transcripts and fits a natural cubic spline through the averages. Fewer
// than three distinct sample times yields no fitted curve.
func fitExpression(expression map[string][]model.ExpressionPoint) (*interpolate.CubicSpline, error) {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, points := range expression {
		for _, p := range points {
			sums[p.TimeS] += p.Level
			counts[p.TimeS]++
		}
	}
	if len(sums) < 3 {
		return nil, nil
	}

	times := make([]float64, 0, len(sums))
	for ts := range sums {
		times = append(times, ts)
	}
	sort.Float64s(times)

	levels := make([]float64, len(times))
	for i, ts := range times {
		levels[i] = sums[ts] / float64(counts[ts])
	}
	return interpolate.Fit(times, levels)
}
