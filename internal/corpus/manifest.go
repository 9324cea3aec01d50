// Package corpus reads the optional corpus manifest describing the record
// set being aggregated. The manifest lives at the corpus root as either
// corpus.toml or corpus.yaml; when neither exists the aggregator infers the
// label fields from the records themselves.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest describes a corpus for labeling purposes. It never affects the
// statistics themselves, only snapshot metadata.
type Manifest struct {
	// Name is the human-readable corpus label
	Name string `toml:"name" yaml:"name"`

	// Year is the wrapped year; 0 means infer from the last record
	Year int `toml:"year" yaml:"year"`

	// Source identifies where the export came from
	Source string `toml:"source,omitempty" yaml:"source,omitempty"`

	// Notes is free-form provenance text
	Notes string `toml:"notes,omitempty" yaml:"notes,omitempty"`
}

// manifestFiles are probed in order; the first match wins.
var manifestFiles = []string{"corpus.toml", "corpus.yaml", "corpus.yml"}

// Load reads the manifest from the corpus directory. A missing manifest is
// not an error and returns nil.
func Load(corpusDir string) (*Manifest, error) {
	for _, name := range manifestFiles {
		path := filepath.Join(corpusDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading manifest %s: %w", path, err)
		}

		var m Manifest
		if filepath.Ext(name) == ".toml" {
			if err := toml.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
			}
		}

		return &m, nil
	}

	return nil, nil
}
