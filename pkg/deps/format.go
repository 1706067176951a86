package deps

import (
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/cratecat/pkg/errors"
)

// Format describes a resolved-metadata document format and how to decode it
// into a [Document]. Ecosystem subpackages export one Format each.
type Format struct {
	Name      string                               // Canonical name, e.g. "cargo"
	Aliases   map[string]string                    // Alternative names mapped to Name
	FileNames []string                             // Conventional file names of the document
	Decode    func(r io.Reader) (*Document, error) // Schema boundary
}

// Matches reports whether name refers to this format, either by name, alias
// or conventional file name.
func (f *Format) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == f.Name {
		return true
	}
	if v, ok := f.Aliases[name]; ok && v == f.Name {
		return true
	}
	return slices.ContainsFunc(f.FileNames, func(fn string) bool { return strings.EqualFold(fn, name) })
}

// LookupFormat returns the first format matching name.
func LookupFormat(formats []*Format, name string) (*Format, error) {
	for _, f := range formats {
		if f.Matches(name) {
			return f, nil
		}
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown metadata format %q (available: %s)", name, strings.Join(names, ", "))
}
