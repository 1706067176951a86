// Package io encodes dependency catalogs for people and tools.
//
// # Formats
//
// JSON is the interchange format. It round-trips through [ReadJSON] and is
// what the catalog caches store:
//
//	{
//	  "dependencies": [
//	    {
//	      "name": "serde",
//	      "epoch": "v1",
//	      "version": "1.0.152",
//	      "features": ["default", "derive", "std"],
//	      "kinds": {
//	        "normal": {"features": ["default", "derive", "serde_derive", "std"]}
//	      },
//	      "dependencies": {"normal": ["serde_derive@v1"]}
//	    }
//	  ]
//	}
//
// Epochs use their target-suffix spelling ("v1", "v0_3", "v0_0_4") and kinds
// their cargo spelling ("normal", "build", "dev"). A kind's "platforms" list
// is omitted when the dependency is needed on every platform.
//
// [WriteYAML] writes the same structure as YAML. [Table] renders a terminal
// table for humans.
package io
