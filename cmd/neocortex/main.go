// Command neocortex indexes your reading highlights and answers
// questions grounded in them, using local models.
package main

import (
	"fmt"
	"os"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driving/cli"
)

// version is overridden at build time via
// -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
