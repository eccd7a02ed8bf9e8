// Package main provides the sage CLI.
//
// Usage:
//
//	sage [flags] <command> [args]
//
// Commands:
//
//	serve     - Run the web surface against a live insight feed
//	observe   - Observe voice features for a user from the terminal
//	baseline  - Inspect, establish, or replace a vocal baseline
package main

import (
	"fmt"
	"os"

	"github.com/sagehealth/go-sage/cmd/sage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
