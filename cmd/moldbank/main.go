package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/evghenin/moldova-banking/internal/commands"
)

func main() {
	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
