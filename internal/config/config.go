// Package config loads the cstats configuration from .cstats/config.json,
// falling back to defaults when no file exists. Flags and CSTATS_* env vars
// override file values at the CLI layer.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete cstats configuration (v2 schema)
type Config struct {
	Version   int    `json:"version" mapstructure:"version"`
	CorpusDir string `json:"corpusDir" mapstructure:"corpusDir"`
	Output    string `json:"output" mapstructure:"output"`

	Bins      BinsConfig      `json:"bins" mapstructure:"bins"`
	TopLists  TopListsConfig  `json:"topLists" mapstructure:"topLists"`
	Selection SelectionConfig `json:"selection" mapstructure:"selection"`
	Treemap   TreemapConfig   `json:"treemap" mapstructure:"treemap"`
	Scores    ScoresConfig    `json:"scores" mapstructure:"scores"`
	Archive   ArchiveConfig   `json:"archive" mapstructure:"archive"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// BinsConfig sets histogram bin counts per measure
type BinsConfig struct {
	FirstPrompt    int `json:"firstPrompt" mapstructure:"firstPrompt"`
	Followup       int `json:"followup" mapstructure:"followup"`
	Assistant      int `json:"assistant" mapstructure:"assistant"`
	MessagesPerCon int `json:"messagesPerConversation" mapstructure:"messagesPerConversation"`
	Score          int `json:"score" mapstructure:"score"`
	Serendipity    int `json:"serendipity" mapstructure:"serendipity"`
}

// TopListsConfig sets truncation sizes for the canonicalized entity rankings
type TopListsConfig struct {
	Keywords     int `json:"keywords" mapstructure:"keywords"`
	People       int `json:"people" mapstructure:"people"`
	Companies    int `json:"companies" mapstructure:"companies"`
	Products     int `json:"products" mapstructure:"products"`
	Places       int `json:"places" mapstructure:"places"`
	Technologies int `json:"technologies" mapstructure:"technologies"`
	Concepts     int `json:"concepts" mapstructure:"concepts"`
	Subdomains   int `json:"subdomains" mapstructure:"subdomains"`
	Combinations int `json:"combinations" mapstructure:"combinations"`
	GeoPlaces    int `json:"geoPlaces" mapstructure:"geoPlaces"`
}

// SelectionConfig controls top-conversation selection rules
type SelectionConfig struct {
	HighScoreThreshold    float64 `json:"highScoreThreshold" mapstructure:"highScoreThreshold"`
	TopConversations      int     `json:"topConversations" mapstructure:"topConversations"`
	SerendipityPercentile float64 `json:"serendipityPercentile" mapstructure:"serendipityPercentile"`
	TopSerendipitous      int     `json:"topSerendipitous" mapstructure:"topSerendipitous"`
	MinModelSamples       int     `json:"minModelSamples" mapstructure:"minModelSamples"`
	TopByVolume           int     `json:"topByVolume" mapstructure:"topByVolume"`
}

// TreemapConfig sets the layout canvas and thresholds
type TreemapConfig struct {
	Width     float64 `json:"width" mapstructure:"width"`
	Height    float64 `json:"height" mapstructure:"height"`
	Padding   float64 `json:"padding" mapstructure:"padding"`
	MinWidth  float64 `json:"minWidth" mapstructure:"minWidth"`
	MinHeight float64 `json:"minHeight" mapstructure:"minHeight"`
	MaxNodes  int     `json:"maxNodes" mapstructure:"maxNodes"`
}

// ScoresConfig points at an optional score-definitions file
type ScoresConfig struct {
	DefinitionsPath string `json:"definitionsPath" mapstructure:"definitionsPath"`
}

// ArchiveConfig controls the sqlite run archive
type ArchiveConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	DBPath  string `json:"dbPath" mapstructure:"dbPath"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   2,
		CorpusDir: "data/wmeta",
		Output:    "data/stats/stats.json",
		Bins: BinsConfig{
			FirstPrompt:    15,
			Followup:       15,
			Assistant:      15,
			MessagesPerCon: 12,
			Score:          20,
			Serendipity:    10,
		},
		TopLists: TopListsConfig{
			Keywords:     50,
			People:       30,
			Companies:    30,
			Products:     30,
			Places:       30,
			Technologies: 50,
			Concepts:     30,
			Subdomains:   10,
			Combinations: 20,
			GeoPlaces:    50,
		},
		Selection: SelectionConfig{
			HighScoreThreshold:    80,
			TopConversations:      3,
			SerendipityPercentile: 0.05,
			TopSerendipitous:      20,
			MinModelSamples:       10,
			TopByVolume:           3,
		},
		Treemap: TreemapConfig{
			Width:     1000,
			Height:    600,
			Padding:   4,
			MinWidth:  60,
			MinHeight: 40,
			MaxNodes:  40,
		},
		Scores: ScoresConfig{
			DefinitionsPath: "",
		},
		Archive: ArchiveConfig{
			Enabled: true,
			DBPath:  "",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <workDir>/.cstats/config.json
func LoadConfig(workDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 2)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(workDir, ".cstats"))

	if err := v.ReadInConfig(); err != nil {
		// Missing config is not an error; run on defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <workDir>/.cstats/config.json
func (c *Config) Save(workDir string) error {
	dir := filepath.Join(workDir, ".cstats")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 2 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.CorpusDir == "" {
		return &ConfigError{Field: "corpusDir", Message: "corpus directory is required"}
	}
	for field, bins := range map[string]int{
		"bins.firstPrompt":             c.Bins.FirstPrompt,
		"bins.followup":                c.Bins.Followup,
		"bins.assistant":               c.Bins.Assistant,
		"bins.messagesPerConversation": c.Bins.MessagesPerCon,
		"bins.score":                   c.Bins.Score,
		"bins.serendipity":             c.Bins.Serendipity,
	} {
		if bins < 1 {
			return &ConfigError{Field: field, Message: "bin count must be at least 1"}
		}
	}
	if c.Selection.SerendipityPercentile < 0 || c.Selection.SerendipityPercentile >= 1 {
		return &ConfigError{Field: "selection.serendipityPercentile", Message: "must be in [0, 1)"}
	}
	if c.Treemap.Width <= 0 || c.Treemap.Height <= 0 {
		return &ConfigError{Field: "treemap", Message: "canvas dimensions must be positive"}
	}
	if c.Treemap.Padding < 0 {
		return &ConfigError{Field: "treemap.padding", Message: "padding must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
