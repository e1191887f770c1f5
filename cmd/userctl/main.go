package main

import (
	"os"

	"github.com/spec-kit/user-service/cmd/userctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
