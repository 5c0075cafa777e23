package main

import (
	"os"

	"pair-tasks/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
