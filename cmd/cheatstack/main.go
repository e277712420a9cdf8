package main

import (
	"fmt"
	"os"

	"github.com/sai-sandeep-seelam/CheatStack/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cheatstack:", err)
		os.Exit(1)
	}
}
