package crates

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratecat/pkg/errors"
)

type epochKind uint8

// Kinds are declared in version order so that comparing (kind, n) pairs
// orders epochs the way the versions they came from are ordered.
const (
	kindInvalid epochKind = iota
	kindPatch
	kindMinor
	kindMajor
)

// Epoch is the compatibility bucket of a semantic version. Two versions of a
// package with the same Epoch are treated as API-compatible and share one
// build target; versions with different epochs coexist.
//
// Epoch is comparable and can be used as (part of) a map key. The zero value
// is not a valid epoch.
type Epoch struct {
	kind epochKind
	n    uint64
	pre  string // pre-release tag, Patch epochs only
}

// Major returns the epoch of a version n.y.z with n >= 1.
func Major(n uint64) Epoch { return Epoch{kind: kindMajor, n: n} }

// Minor returns the epoch of a pre-1.0 version 0.n.z with n >= 1.
func Minor(n uint64) Epoch { return Epoch{kind: kindMinor, n: n} }

// Patch returns the epoch of a version 0.0.n. Every such version is its own
// bucket: no two 0.0.z releases are considered compatible.
func Patch(n uint64) Epoch { return Epoch{kind: kindPatch, n: n} }

// PrePatch returns the epoch of the pre-release 0.0.n-pre. It is distinct
// from Patch(n) and from every other pre-release of 0.0.n.
func PrePatch(n uint64, pre string) Epoch { return Epoch{kind: kindPatch, n: n, pre: pre} }

// EpochFromVersion classifies a semantic version string. The version must
// have exactly three numeric components, optionally followed by pre-release
// and build metadata; anything else yields an error with code
// MALFORMED_VERSION.
func EpochFromVersion(version string) (Epoch, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return Epoch{}, errors.Wrap(errors.ErrCodeMalformedVersion, err, "invalid version %q", version)
	}
	return EpochOf(v), nil
}

// EpochOf classifies an already parsed version. Pre-release tags only
// matter for 0.0.z versions, which are keyed by the full version; build
// metadata never does.
func EpochOf(v *semver.Version) Epoch {
	switch {
	case v.Major() != 0:
		return Major(v.Major())
	case v.Minor() != 0:
		return Minor(v.Minor())
	default:
		return PrePatch(v.Patch(), v.Prerelease())
	}
}

// ParseEpoch parses the textual form produced by [Epoch.String]:
// "v1" for Major(1), "v0_3" for Minor(3), "v0_0_4" for Patch(4) and
// "v0_0_4-alpha.1" for PrePatch(4, "alpha.1").
func ParseEpoch(s string) (Epoch, error) {
	rest, ok := strings.CutPrefix(s, "v")
	if !ok {
		return Epoch{}, errors.New(errors.ErrCodeInvalidFormat, "epoch %q: missing 'v' prefix", s)
	}
	rest, pre, hasPre := strings.Cut(rest, "-")

	parts := strings.Split(rest, "_")
	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil || (len(p) > 1 && p[0] == '0') {
			return Epoch{}, errors.New(errors.ErrCodeInvalidFormat, "epoch %q: invalid component %q", s, p)
		}
		nums[i] = n
	}

	switch {
	case hasPre && len(nums) != 3:
		return Epoch{}, errors.New(errors.ErrCodeInvalidFormat, "epoch %q: only 0.0.z epochs carry a pre-release", s)
	case len(nums) == 1 && nums[0] != 0:
		return Major(nums[0]), nil
	case len(nums) == 2 && nums[0] == 0 && nums[1] != 0:
		return Minor(nums[1]), nil
	case len(nums) == 3 && nums[0] == 0 && nums[1] == 0:
		if !hasPre {
			return Patch(nums[2]), nil
		}
		if _, err := semver.StrictNewVersion(fmt.Sprintf("0.0.%d-%s", nums[2], pre)); err != nil || pre == "" {
			return Epoch{}, errors.New(errors.ErrCodeInvalidFormat, "epoch %q: invalid pre-release %q", s, pre)
		}
		return PrePatch(nums[2], pre), nil
	}
	return Epoch{}, errors.New(errors.ErrCodeInvalidFormat, "epoch %q: not a canonical epoch", s)
}

// IsZero reports whether e is the zero (invalid) epoch.
func (e Epoch) IsZero() bool { return e.kind == kindInvalid }

// IsMajor reports whether e is a Major epoch.
func (e Epoch) IsMajor() bool { return e.kind == kindMajor }

// IsMinor reports whether e is a Minor epoch.
func (e Epoch) IsMinor() bool { return e.kind == kindMinor }

// IsPatch reports whether e is a 0.0.z epoch.
func (e Epoch) IsPatch() bool { return e.kind == kindPatch }

// Value returns the version component that identifies the bucket.
func (e Epoch) Value() uint64 { return e.n }

// Prerelease returns the pre-release tag of a 0.0.z epoch, or "".
func (e Epoch) Prerelease() string { return e.pre }

// Compare orders epochs the way their versions are ordered: every Patch
// epoch sorts before every Minor epoch, which sorts before every Major epoch.
// Pre-releases of 0.0.z sort before the release, by semver precedence.
func (e Epoch) Compare(other Epoch) int {
	if c := cmp.Compare(e.kind, other.kind); c != 0 {
		return c
	}
	if c := cmp.Compare(e.n, other.n); c != 0 || e.pre == other.pre {
		return c
	}
	a := semver.New(0, 0, e.n, e.pre, "")
	b := semver.New(0, 0, other.n, other.pre, "")
	return a.Compare(b)
}

// String returns the build-target suffix for the epoch, e.g. "v1" or "v0_3".
func (e Epoch) String() string {
	switch e.kind {
	case kindMajor:
		return fmt.Sprintf("v%d", e.n)
	case kindMinor:
		return fmt.Sprintf("v0_%d", e.n)
	case kindPatch:
		if e.pre != "" {
			return fmt.Sprintf("v0_0_%d-%s", e.n, e.pre)
		}
		return fmt.Sprintf("v0_0_%d", e.n)
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Epoch) MarshalText() ([]byte, error) {
	if e.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot encode zero epoch")
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Epoch) UnmarshalText(text []byte) error {
	parsed, err := ParseEpoch(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
