package main

import (
	"github.com/joho/godotenv"

	"tagscope/internal/cli"
)

func main() {
	// .env is optional; TAGSCOPE_* overrides are read by the config layer.
	_ = godotenv.Load()
	cli.Execute()
}
