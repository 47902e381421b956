package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gddocs",
		Short: "Markdown class reference generator for Godot projects",
		Long: `gddocs reads the GDScript files of a Godot project and generates a tree
of markdown class reference files from their '##' doc comments. Output files
nest by inheritance, so a class's page sits under its base class's directory.`,
		Version: version,
	}

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
