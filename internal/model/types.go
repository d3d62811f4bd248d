package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Gene is a curated genome annotation entry.
type Gene struct {
	ID        string `json:"id" yaml:"id"`
	Symbol    string `json:"symbol" yaml:"symbol"`
	Sequence  string `json:"sequence" yaml:"sequence"`
	RNAID     string `json:"rna_id" yaml:"rna_id"`
	MonomerID string `json:"monomer_id,omitempty" yaml:"monomer_id,omitempty"`

	// HalfLifeS is the transcript half life in seconds; zero means the
	// curated default applies.
	HalfLifeS float64 `json:"half_life_s,omitempty" yaml:"half_life_s,omitempty"`
}

// RNA is a transcript derived from a gene.
type RNA struct {
	ID       string  `json:"id" yaml:"id"`
	GeneID   string  `json:"gene_id" yaml:"gene_id"`
	Sequence string  `json:"sequence" yaml:"sequence"`
	HalfLife float64 `json:"half_life_s,omitempty" yaml:"half_life_s,omitempty"`
}

// Protein is a translated monomer.
type Protein struct {
	ID       string `json:"id" yaml:"id"`
	RNAID    string `json:"rna_id" yaml:"rna_id"`
	Sequence string `json:"sequence" yaml:"sequence"`
}

// Metabolite is a small molecule participating in reactions.
type Metabolite struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	MassDa float64 `json:"mass_da" yaml:"mass_da"`
}

// Reaction is a stoichiometric transformation over metabolites. Coefficients
// are negative for substrates and positive for products.
type Reaction struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	Stoichiometry map[string]float64 `json:"stoichiometry" yaml:"stoichiometry"`
	Reversible    bool               `json:"reversible" yaml:"reversible"`
	EnzymeID      string             `json:"enzyme_id,omitempty" yaml:"enzyme_id,omitempty"`
}

// ExpressionPoint is one sampled point of an RNA expression time course.
type ExpressionPoint struct {
	TimeS float64 `json:"time_s" yaml:"time_s"`
	Level float64 `json:"level" yaml:"level"`
}

// BuildRecord describes one completed knowledge-base build.
type BuildRecord struct {
	VersionedRecord
	ID            string    `json:"id"`
	OutDir        string    `json:"out_dir"`
	SnapshotPath  string    `json:"snapshot_path"`
	GeneCount     int       `json:"gene_count"`
	RNACount      int       `json:"rna_count"`
	ProteinCount  int       `json:"protein_count"`
	ReactionCount int       `json:"reaction_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NetworkSummary describes a causality network derived from a build.
type NetworkSummary struct {
	VersionedRecord
	BuildID   string `json:"build_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}
