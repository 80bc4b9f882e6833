package main

import (
	"os"

	"github.com/dshills/logchange/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
