package main

import (
	"os"

	"bandline/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
