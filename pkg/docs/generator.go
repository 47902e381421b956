// Package docs turns a Godot project's GDScript sources into a tree of
// markdown class reference files. Scripts are parsed with pkg/gdscript and
// rendered through a class template; output files nest by inheritance, so
// Enemy.md sits under its base class's directory.
package docs

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "embed"

	"github.com/NectoT/gdscript-to-md-docs/pkg/gdscript"
	"github.com/NectoT/gdscript-to-md-docs/pkg/jinja"
)

//go:embed class_template.md
var defaultTemplate string

// Config holds the generator settings.
type Config struct {
	// ProjectDir is the Godot project root to scan for *.gd files.
	ProjectDir string
	// OutputDir receives the generated markdown tree.
	OutputDir string
	// TemplatePath overrides the embedded class template when non-empty.
	TemplatePath string
	// ScriptTemplatesDir is the project-relative directory of Godot script
	// templates, which are skeletons rather than real classes.
	ScriptTemplatesDir string
	// NamedOnly restricts generation to scripts with a class_name.
	NamedOnly bool
	// Logger receives progress output. nil disables it.
	Logger *log.Logger
}

// Generator renders class reference files for one project.
type Generator struct {
	cfg    Config
	tmpl   *jinja.Template
	logger *log.Logger
}

// NewGenerator loads the class template and prepares a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.ScriptTemplatesDir == "" {
		cfg.ScriptTemplatesDir = "script_templates"
	}
	source := defaultTemplate
	if cfg.TemplatePath != "" {
		data, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		source = string(data)
	}
	tmpl, err := jinja.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("loading class template: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{cfg: cfg, tmpl: tmpl, logger: logger}, nil
}

// Run scans the project, parses every script and writes the markdown tree.
func (g *Generator) Run() error {
	classes, err := g.collect()
	if err != nil {
		return err
	}
	g.logger.Printf("parsed %d classes", len(classes))

	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := classes[name]
		relDir := outputDir(info, classes)
		target := filepath.Join(g.cfg.OutputDir, relDir, name+".md")
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		rendered, err := g.tmpl.Render(classContext(info))
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		if err := os.WriteFile(target, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		g.logger.Printf("wrote %s", target)
	}
	return nil
}

// collect parses every script under the project directory, skipping the
// addons and script template directories.
func (g *Generator) collect() (map[string]*gdscript.ClassInfo, error) {
	classes := make(map[string]*gdscript.ClassInfo)
	root := g.cfg.ProjectDir
	skipDirs := map[string]bool{
		"addons":                 true,
		g.cfg.ScriptTemplatesDir: true,
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[filepath.ToSlash(rel)] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".gd" {
			return nil
		}

		info, err := gdscript.ParseFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		switch {
		case info.Name != "":
			classes[info.Name] = info
		case !g.cfg.NamedOnly:
			classes[pathBasedName(rel)] = info
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return classes, nil
}

// pathBasedName derives a stable class name for scripts without a class_name
// from their project-relative path: scripts/ui/menu.gd becomes
// scripts-ui-menu.gd.
func pathBasedName(rel string) string {
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), "-")
}

// outputDir walks the inheritance chain to place a class under its ancestors:
// a class extending Enemy, which extends Node, lands in Node/Enemy/. Script
// path bases like "res://scripts/base.gd" normalize the same way as
// pathBasedName so the two name forms meet.
func outputDir(info *gdscript.ClassInfo, classes map[string]*gdscript.ClassInfo) string {
	dir := ""
	base := info.Extends
	seen := map[string]bool{}
	for base != "" && !seen[base] {
		seen[base] = true
		stripped := strings.Trim(base, `"'`)
		if strings.HasSuffix(stripped, ".gd") {
			base = strings.ReplaceAll(strings.TrimPrefix(stripped, "res://"), "/", "-")
		}
		dir = filepath.Join(base, dir)

		parent, ok := classes[base]
		if !ok {
			break
		}
		base = parent.Extends
	}
	return dir
}
