package main

import (
	"fmt"
	"os"

	"github.com/WSU-CptS-581-2025/black-code-formatter/cmd"
)

func main() {
	root, statz := cmd.NewRoot()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	statz.Print()
}
