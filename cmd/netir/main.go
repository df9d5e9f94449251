// Package main provides the netir CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/born-ml/netir/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
