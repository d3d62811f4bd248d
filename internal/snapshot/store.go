package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes a materialized tree to path, creating parent directories.
func Save(path string, tree any) error {
	data, err := Encode(tree)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads a tree back from path.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	tree, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return tree, nil
}

// SimDataPath joins an output directory with the canonical location of its
// serialized sim data.
func SimDataPath(outDir string) string {
	return filepath.Join(outDir, KBDir, SimDataFilename)
}
