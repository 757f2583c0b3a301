// Command certauth is the CLI for inspecting chain-bound tokens and
// diagnosing trust configuration.
package main

import (
	"fmt"
	"os"

	"github.com/sufield/certauth/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
