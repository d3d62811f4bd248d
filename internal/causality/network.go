// Package causality derives a node/edge network from a built knowledge base:
// one node per molecule plus one per transcription, translation, or reaction
// process, with typed edges carrying stoichiometry.
package causality

import (
	"fmt"

	"wholecell/internal/kb"
)

// Node kinds.
const (
	NodeGene       = "gene"
	NodeRNA        = "rna"
	NodeProtein    = "protein"
	NodeMetabolite = "metabolite"
	NodeProcess    = "process"
)

// Edge kinds.
const (
	EdgeTranscription = "transcription"
	EdgeTranslation   = "translation"
	EdgeReaction      = "reaction"
	EdgeCatalysis     = "catalysis"
)

type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`

	// Stoich is the signed coefficient for reaction edges, zero otherwise.
	Stoich float64 `json:"stoich,omitempty"`
}

type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build assembles the causality network for a sim-data aggregate. Every node
// ID must be unique across molecule and process namespaces; a collision means
// the knowledge base is malformed.
func Build(sd *kb.SimData) (*Network, error) {
	b := &builder{seen: make(map[string]string)}

	t := sd.Transcription
	for i, geneID := range t.GeneIDs {
		rnaID := t.RNAIDs[i]
		processID := "transcription/" + geneID
		if err := b.addNodes(
			Node{ID: geneID, Type: NodeGene},
			Node{ID: rnaID, Type: NodeRNA},
			Node{ID: processID, Type: NodeProcess},
		); err != nil {
			return nil, err
		}
		b.addEdge(Edge{From: geneID, To: processID, Type: EdgeTranscription})
		b.addEdge(Edge{From: processID, To: rnaID, Type: EdgeTranscription})
	}

	tr := sd.Translation
	for i, monomerID := range tr.MonomerIDs {
		rnaID := tr.RNAIDs[i]
		processID := "translation/" + monomerID
		if err := b.addNodes(
			Node{ID: monomerID, Type: NodeProtein},
			Node{ID: processID, Type: NodeProcess},
		); err != nil {
			return nil, err
		}
		b.addEdge(Edge{From: rnaID, To: processID, Type: EdgeTranslation})
		b.addEdge(Edge{From: processID, To: monomerID, Type: EdgeTranslation})
	}

	m := sd.Metabolism
	for _, metID := range m.MetaboliteIDs {
		if err := b.addNodes(Node{ID: metID, Type: NodeMetabolite}); err != nil {
			return nil, err
		}
	}
	nRxn := len(m.ReactionIDs)
	for j, rxnID := range m.ReactionIDs {
		processID := "reaction/" + rxnID
		if err := b.addNodes(Node{ID: processID, Type: NodeProcess}); err != nil {
			return nil, err
		}
		for i, metID := range m.MetaboliteIDs {
			coeff := m.StoichMatrix.Floats[i*nRxn+j]
			switch {
			case coeff < 0:
				b.addEdge(Edge{From: metID, To: processID, Type: EdgeReaction, Stoich: coeff})
			case coeff > 0:
				b.addEdge(Edge{From: processID, To: metID, Type: EdgeReaction, Stoich: coeff})
			}
		}
		if enzymeID := m.EnzymeIDs[j]; enzymeID != "" {
			b.addEdge(Edge{From: enzymeID, To: processID, Type: EdgeCatalysis})
		}
	}

	return &Network{Nodes: b.nodes, Edges: b.edges}, nil
}

type builder struct {
	seen  map[string]string
	nodes []Node
	edges []Edge
}

// addNodes inserts nodes, skipping IDs already present with the same type.
// The same ID under two different types is a malformed knowledge base.
func (b *builder) addNodes(nodes ...Node) error {
	for _, n := range nodes {
		if typ, ok := b.seen[n.ID]; ok {
			if typ != n.Type {
				return fmt.Errorf("duplicate node id %s with conflicting types %s/%s", n.ID, typ, n.Type)
			}
			continue
		}
		b.seen[n.ID] = n.Type
		b.nodes = append(b.nodes, n)
	}
	return nil
}

func (b *builder) addEdge(e Edge) {
	b.edges = append(b.edges, e)
}
