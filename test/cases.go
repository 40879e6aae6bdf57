// Package test contains test vectors with the canonical bytes of values.
package test

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/value"
	"gopkg.in/yaml.v3"
)

//go:embed vectors
var vectorsFS embed.FS

type TestFile struct {
	// Description is a simple description for all cases in the file.
	Description string
	// Cases is a list of all test cases in the file.
	Cases []TestCase
}

type TestCase struct {
	// Description is a simple description for the test case.
	Description string
	// Value is the value to hash.
	Value value.Value
	// Identity is the hex encoded digest of the value when hashed with
	// the identity digest, which is the canonical serialization itself.
	Identity string
}

// UnmarshalYAML decodes a test case. The value is decoded from its node
// so that plain nulls are not left as zero values.
func (tc *TestCase) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Description string
		Value       yaml.Node
		Identity    string
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Value.Kind == 0 {
		return fmt.Errorf("line %d: test case %q has no value", node.Line, raw.Description)
	}
	tc.Description = raw.Description
	tc.Identity = raw.Identity
	return tc.Value.UnmarshalYAML(&raw.Value)
}

// IdentityHash returns the decoded identity digest.
// Whitespace is ignored so that long digests can be grouped.
func (tc TestCase) IdentityHash() (digest.Hash, error) {
	return digest.ParseHash(tc.Identity)
}

// TestFilePaths returns a list of all test vector file paths.
func TestFilePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(vectorsFS, "vectors", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadTestFile loads and parses a test vector file.
func LoadTestFile(path string) (*TestFile, error) {
	data, err := fs.ReadFile(vectorsFS, path)
	if err != nil {
		return nil, err
	}
	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		return nil, err
	}
	return &testFile, nil
}
