// Package crates classifies crate versions into compatibility epochs.
//
// # Epochs
//
// Cargo treats two versions as compatible when they agree on their first
// non-zero component. An [Epoch] names that bucket:
//
//   - 1.2.3, 1.9.0 → Major(1), rendered "v1"
//   - 0.3.1, 0.3.25 → Minor(3), rendered "v0_3"
//   - 0.0.4 → Patch(4), rendered "v0_0_4"
//
// Versions of the form 0.0.z are never compatible with each other, so each
// one gets its own bucket.
//
// Use [EpochFromVersion] to classify a version string:
//
//	e, err := crates.EpochFromVersion("0.3.25")
//	// e == crates.Minor(3), e.String() == "v0_3"
//
// Version strings must be strict MAJOR.MINOR.PATCH semantic versions; a
// malformed version yields an error with code MALFORMED_VERSION.
package crates
