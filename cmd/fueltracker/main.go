package main

import (
	"os"

	"github.com/wonny/fueltracker/cmd/fueltracker/commands"
)

// main is the entry point for the fueltracker CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fueltracker [command]
func main() {
	os.Exit(commands.Execute())
}
