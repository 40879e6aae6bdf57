// Package config contains the treehash command configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/hasher"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Input formats.
const (
	FormatDagJSON = "dag-json"
	FormatDagCBOR = "dag-cbor"
	FormatCBOR    = "cbor"
	FormatYAML    = "yaml"
	FormatCAR     = "car"
)

// Formats contains all supported input formats.
var Formats = []string{FormatDagJSON, FormatDagCBOR, FormatCBOR, FormatYAML, FormatCAR}

// Config controls how input is read and hashed.
type Config struct {
	// Algorithm is the digest algorithm name.
	Algorithm string `yaml:"algorithm"`
	// Format is the input format.
	Format string `yaml:"format"`
	// MaxDepth is the maximum container nesting depth.
	MaxDepth int `yaml:"maxDepth"`
	// FollowLinks resolves IPLD links to the blocks they refer to.
	FollowLinks bool `yaml:"followLinks"`
	// Export is the path of a CAR file that the DAG of a single
	// IPLD input is written to after hashing.
	Export string `yaml:"export"`
	// Verbosity is the log verbosity. Zero logs notices, two and above
	// logs debug messages and -4 disables logging.
	Verbosity int `yaml:"verbosity"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Algorithm:   "sha2-256",
		Format:      FormatDagJSON,
		MaxDepth:    hasher.DefaultMaxDepth,
		FollowLinks: true,
	}
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if _, err := digest.ByName(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Export != "" && !c.IPLD() {
		return fmt.Errorf("%w: %s input cannot be exported", ErrInvalidConfig, c.Format)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be positive", ErrInvalidConfig)
	}
	if c.Verbosity < -4 {
		return fmt.Errorf("%w: verbosity must be at least -4", ErrInvalidConfig)
	}
	return nil
}

// IPLD returns true if the input format is decoded into IPLD nodes.
func (c Config) IPLD() bool {
	return c.Format == FormatDagJSON || c.Format == FormatDagCBOR || c.Format == FormatCAR
}

// Provider returns the digest provider for the configured algorithm.
func (c Config) Provider() (digest.Provider, error) {
	return digest.ByName(c.Algorithm)
}

// HasherOptions returns the hasher options for this configuration.
func (c Config) HasherOptions() []hasher.Option {
	return []hasher.Option{hasher.WithMaxDepth(c.MaxDepth)}
}
