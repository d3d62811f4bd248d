// Package kb builds the fitted knowledge base from raw curated flat files:
// transcript and monomer sequences, molecular masses, the stoichiometric
// matrix, and a fitted expression curve, assembled into the SimData aggregate
// that snapshots serialize.
package kb

import (
	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/units"
)

// SimData is the fitted knowledge-base aggregate. Its exported fields are
// what gets materialized, serialized, and regression-diffed.
type SimData struct {
	Transcription *Transcription
	Translation   *Translation
	Metabolism    *Metabolism

	// MoleculeIDs labels the rows of MoleculeMasses: RNAs, then monomers,
	// then metabolites.
	MoleculeIDs    []string
	MoleculeMasses *units.StructArray
}

// Transcription holds per-gene transcript data, ordered by gene ID.
type Transcription struct {
	GeneIDs   []string
	RNAIDs    []string
	Sequences []bioseq.Seq

	// HalfLives is an array quantity in seconds, aligned with RNAIDs.
	HalfLives units.Quantity

	// Expression is the population-average expression level fitted over the
	// sampled time courses.
	Expression *interpolate.CubicSpline
}

// Translation holds per-monomer peptide data, aligned with the subset of
// genes that encode a monomer.
type Translation struct {
	MonomerIDs []string
	RNAIDs     []string
	Sequences  []bioseq.Seq
}

// Metabolism holds the reaction network. StoichMatrix has one row per
// metabolite and one column per reaction, substrates negative.
type Metabolism struct {
	MetaboliteIDs []string
	ReactionIDs   []string
	StoichMatrix  *ndarray.Array
	Reversible    *ndarray.Array
	EnzymeIDs     []string
}
