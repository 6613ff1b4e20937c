package main

import (
	"os"

	"github.com/wonny/nifty50/cmd/nifty/commands"
)

// main is the entry point for the nifty CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/nifty [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
