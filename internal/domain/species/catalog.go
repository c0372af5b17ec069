package species

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SupportedVersion is the catalog format this build understands.
const SupportedVersion = 1

//go:embed catalog.yaml
var builtin []byte

// Catalog is the versioned species list plus section keyword sets.
type Catalog struct {
	Version  int     `yaml:"version"`
	Default  Info    `yaml:"default"`
	Species  []Entry `yaml:"species"`
	Sections struct {
		Human  SectionRules `yaml:"human"`
		Animal SectionRules `yaml:"animal"`
	} `yaml:"sections"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog file; an empty path means the built-in one.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse species catalog: %w", err)
	}
	if c.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported species catalog version %d (want %d)", c.Version, SupportedVersion)
	}
	if c.Default.CommonName == "" {
		return nil, fmt.Errorf("species catalog has no default subject")
	}
	if c.Default.Category == "" {
		c.Default.Category = CategoryHuman
	}
	for i := range c.Species {
		if c.Species[i].Keyword == "" {
			return nil, fmt.Errorf("species catalog entry %d has no keyword", i)
		}
		if c.Species[i].Category == "" {
			c.Species[i].Category = CategoryAnimal
		}
	}
	return &c, nil
}
