package deps

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/matzehuels/cratecat/pkg/crates"
	"github.com/matzehuels/cratecat/pkg/errors"
)

// Key identifies one catalog entry: a package name and a compatibility epoch.
// Key is comparable; the collector groups edges in a map keyed by it.
type Key struct {
	Name  string
	Epoch crates.Epoch
}

// Compare orders keys by name, then by epoch.
func (k Key) Compare(other Key) int {
	if c := cmp.Compare(k.Name, other.Name); c != 0 {
		return c
	}
	return k.Epoch.Compare(other.Epoch)
}

// String returns "name@epoch", e.g. "serde@v1".
func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Name, k.Epoch)
}

// ParseKey parses the output of [Key.String].
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, '@')
	if i <= 0 {
		return Key{}, errors.New(errors.ErrCodeInvalidFormat, "invalid catalog key %q", s)
	}
	epoch, err := crates.ParseEpoch(s[i+1:])
	if err != nil {
		return Key{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "catalog key %q", s)
	}
	return Key{Name: s[:i], Epoch: epoch}, nil
}
