package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cratecat/pkg/deps"
)

// WriteJSON encodes a catalog as indented JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(catalog []*deps.Dependency, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wrap(catalog)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a catalog as YAML and writes it to w.
func WriteYAML(catalog []*deps.Dependency, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(wrap(catalog)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes a catalog to a JSON file at path.
func ExportJSON(catalog []*deps.Dependency, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(catalog, f)
}

func wrap(c []*deps.Dependency) catalog {
	return catalog{Dependencies: Entries(c)}
}
