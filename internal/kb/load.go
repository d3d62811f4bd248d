package kb

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wholecell/internal/model"
)

// Config names the raw flat files for a build. Relative entries resolve
// against DataDir.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	Genes       string `yaml:"genes"`
	Metabolites string `yaml:"metabolites"`
	Reactions   string `yaml:"reactions"`
	Expression  string `yaml:"expression"`
}

// DefaultConfig points at the conventional file names inside dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:     dataDir,
		Genes:       "genes.yaml",
		Metabolites: "metabolites.yaml",
		Reactions:   "reactions.yaml",
		Expression:  "expression.yaml",
	}
}

// LoadConfig reads a build configuration file, filling in default file names
// for any entry left empty.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	defaults := DefaultConfig(cfg.DataDir)
	if cfg.Genes == "" {
		cfg.Genes = defaults.Genes
	}
	if cfg.Metabolites == "" {
		cfg.Metabolites = defaults.Metabolites
	}
	if cfg.Reactions == "" {
		cfg.Reactions = defaults.Reactions
	}
	if cfg.Expression == "" {
		cfg.Expression = defaults.Expression
	}
	return cfg, nil
}

// Raw is the curated input to a build, straight from the flat files.
type Raw struct {
	Genes       []model.Gene
	Metabolites []model.Metabolite
	Reactions   []model.Reaction
	Expression  map[string][]model.ExpressionPoint
}

// LoadRaw reads every flat file named by the configuration.
func LoadRaw(cfg Config) (*Raw, error) {
	raw := &Raw{}

	var genes struct {
		Genes []model.Gene `yaml:"genes"`
	}
	if err := loadYAML(cfg.DataDir, cfg.Genes, &genes); err != nil {
		return nil, err
	}
	raw.Genes = genes.Genes

	var metabolites struct {
		Metabolites []model.Metabolite `yaml:"metabolites"`
	}
	if err := loadYAML(cfg.DataDir, cfg.Metabolites, &metabolites); err != nil {
		return nil, err
	}
	raw.Metabolites = metabolites.Metabolites

	var reactions struct {
		Reactions []model.Reaction `yaml:"reactions"`
	}
	if err := loadYAML(cfg.DataDir, cfg.Reactions, &reactions); err != nil {
		return nil, err
	}
	raw.Reactions = reactions.Reactions

	var expression struct {
		Expression map[string][]model.ExpressionPoint `yaml:"expression"`
	}
	if err := loadYAML(cfg.DataDir, cfg.Expression, &expression); err != nil {
		return nil, err
	}
	raw.Expression = expression.Expression

	return raw, nil
}

func loadYAML(dir, name string, out any) error {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
