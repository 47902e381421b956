package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/NectoT/gdscript-to-md-docs/pkg/docs"
)

// generateFlags holds the flag values shared by generate and serve.
type generateFlags struct {
	project         string
	output          string
	template        string
	scriptTemplates string
	namedOnly       bool
	force           bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", ".", "Path to the Godot project")
	cmd.Flags().StringVarP(&f.output, "output", "o", "gd_docs", "Directory to write markdown files to")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Custom class template file (defaults to the built-in one)")
	cmd.Flags().StringVarP(&f.scriptTemplates, "script-templates", "s", "", "Project-relative script templates directory to skip (default \"script_templates\")")
	cmd.Flags().BoolVarP(&f.namedOnly, "named-only", "n", false, "Only document scripts with a class_name")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Overwrite a non-empty output directory without asking")
}

// resolve merges the project's gddocs.yaml under the flag values: a flag the
// user left at its default yields to the config file.
func (f *generateFlags) resolve(cmd *cobra.Command) (docs.Config, error) {
	fileCfg, err := loadFileConfig(f.project)
	if err != nil {
		return docs.Config{}, err
	}
	cfg := docs.Config{
		ProjectDir:         f.project,
		OutputDir:          f.output,
		TemplatePath:       f.template,
		ScriptTemplatesDir: f.scriptTemplates,
		NamedOnly:          f.namedOnly,
	}
	if !cmd.Flags().Changed("output") && fileCfg.Output != "" {
		cfg.OutputDir = fileCfg.Output
	}
	if !cmd.Flags().Changed("template") && fileCfg.Template != "" {
		cfg.TemplatePath = fileCfg.Template
	}
	if !cmd.Flags().Changed("script-templates") && fileCfg.ScriptTemplates != "" {
		cfg.ScriptTemplatesDir = fileCfg.ScriptTemplates
	}
	if !cmd.Flags().Changed("named-only") && fileCfg.NamedOnly {
		cfg.NamedOnly = true
	}
	return cfg, nil
}

func newGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the markdown class reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if err := clearOutputDir(cfg.OutputDir, flags.force); err != nil {
				return err
			}
			cfg.Logger = log.New(os.Stderr, "", 0)
			gen, err := docs.NewGenerator(cfg)
			if err != nil {
				return err
			}
			return gen.Run()
		},
	}

	flags.register(cmd)
	return cmd
}

// clearOutputDir removes a previous generation run. A non-empty directory is
// only deleted with --force, so a mistyped path cannot wipe unrelated files
// silently.
func clearOutputDir(dir string, force bool) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspecting output directory: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if !force {
		return fmt.Errorf("output directory %s is not empty, pass --force to overwrite it", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing output directory: %w", err)
	}
	return nil
}
