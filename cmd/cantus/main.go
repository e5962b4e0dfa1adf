package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cantuslabs/cantus/internal/cli"
	"github.com/cantuslabs/cantus/internal/model"
)

// Exit codes: 0 conformant/converged, 1 violations found, 2 malformed
// input, configuration, or solver failure.
func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, model.ErrViolations) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
