package main

import (
	"os"

	"github.com/wonny/memestock/cmd/memestock/commands"
)

// main is the entry point for the memestock CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/memestock [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
