package causality

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteNodesTSV writes the node list with a header row.
func (n *Network) WriteNodesTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "id\ttype"); err != nil {
		return err
	}
	for _, node := range n.Nodes {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", node.ID, node.Type); err != nil {
			return err
		}
	}
	return nil
}

// WriteEdgesTSV writes the edge list with a header row. Stoichiometry is
// blank for non-reaction edges.
func (n *Network) WriteEdgesTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "from\tto\ttype\tstoich"); err != nil {
		return err
	}
	for _, edge := range n.Edges {
		stoich := ""
		if edge.Stoich != 0 {
			stoich = strconv.FormatFloat(edge.Stoich, 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", edge.From, edge.To, edge.Type, stoich); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the whole network as one JSON document.
func (n *Network) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

// Export writes nodes.tsv, edges.tsv, and network.json into dir.
func (n *Network) Export(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"nodes.tsv", n.WriteNodesTSV},
		{"edges.tsv", n.WriteEdgesTSV},
		{"network.json", n.WriteJSON},
	}
	for _, item := range writers {
		f, err := os.Create(filepath.Join(dir, item.name))
		if err != nil {
			return err
		}
		if err := item.write(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", item.name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
