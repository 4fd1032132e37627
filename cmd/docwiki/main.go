package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docwiki/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docwiki:", err)
		os.Exit(1)
	}
}
