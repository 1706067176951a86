package deps

import (
	"strings"

	"github.com/matzehuels/cratecat/pkg/errors"
)

// DependencyKind is the build phase during which a dependency is required.
type DependencyKind int

const (
	Normal      DependencyKind = iota // Needed by the library or binary itself
	Build                             // Needed by the build script
	Development                       // Needed by tests, examples and benchmarks
)

// AllKinds lists every dependency kind in declaration order.
var AllKinds = []DependencyKind{Normal, Build, Development}

var kindNames = map[DependencyKind]string{
	Normal:      "normal",
	Build:       "build",
	Development: "dev",
}

// String returns the cargo spelling of the kind: "normal", "build" or "dev".
func (k DependencyKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseDependencyKind parses a kind name. Besides the cargo spellings it
// accepts "development".
func ParseDependencyKind(s string) (DependencyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "build":
		return Build, nil
	case "dev", "development":
		return Development, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown dependency kind %q", s)
}

// ParseDependencyKinds parses a list of kind names, dropping duplicates.
func ParseDependencyKinds(names []string) ([]DependencyKind, error) {
	seen := make(map[DependencyKind]bool)
	var kinds []DependencyKind
	for _, name := range names {
		k, err := ParseDependencyKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// MarshalText implements encoding.TextMarshaler.
func (k DependencyKind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown dependency kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DependencyKind) UnmarshalText(text []byte) error {
	parsed, err := ParseDependencyKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
