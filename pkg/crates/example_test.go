package crates_test

import (
	"fmt"

	"github.com/matzehuels/cratecat/pkg/crates"
)

func ExampleEpochFromVersion() {
	for _, v := range []string{"1.0.137", "0.3.26", "0.0.4"} {
		e, _ := crates.EpochFromVersion(v)
		fmt.Println(v, "=>", e)
	}
	// Output:
	// 1.0.137 => v1
	// 0.3.26 => v0_3
	// 0.0.4 => v0_0_4
}
