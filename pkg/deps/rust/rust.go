package rust

import "github.com/matzehuels/cratecat/pkg/deps"

// Format decodes `cargo metadata --format-version 1` output.
var Format = &deps.Format{
	Name:      "cargo",
	Aliases:   map[string]string{"cargo-metadata": "cargo", "rust": "cargo"},
	FileNames: []string{"metadata.json"},
	Decode:    ParseMetadata,
}

// FormatVersion is the only `cargo metadata` format version understood.
const FormatVersion = 1
