package main

import (
	"fmt"
	"os"

	"yourresumescanner/resume-scanner/cmd/scan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
