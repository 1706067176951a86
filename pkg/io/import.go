package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/errors"
)

// ReadJSON decodes a catalog written by [WriteJSON].
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed or an
// entry has an unknown epoch, kind or dependency key. It does not close r.
func ReadJSON(r io.Reader) ([]*deps.Dependency, error) {
	var data catalog
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode catalog")
	}
	return FromEntries(data.Dependencies)
}

// ImportJSON reads a catalog from a JSON file at path.
func ImportJSON(path string) ([]*deps.Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
