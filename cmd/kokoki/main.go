package main

import (
	"os"

	"github.com/funvibe/kokoki/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
