package main

import (
	"os"

	cmd "github.com/mosaicnetworks/epidemic/cmd/epidemic/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
