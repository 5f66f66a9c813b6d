// Command gones is a cycle-accurate NES emulator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nesforge/gones/internal/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "gones",
		Short:   "A cycle-accurate NES emulator",
		Version: version.GetVersion(),
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	root.AddCommand(newRunCommand(&configPath))
	root.AddCommand(newRomInfoCommand())

	return root
}
