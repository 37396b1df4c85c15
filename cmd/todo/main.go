package main

import (
	"os"

	"taskpad/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
