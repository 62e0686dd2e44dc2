// Package config — .icukit.yaml configuration file support.
//
// When a .icukit.yaml file exists in the working directory, icukit can run
// without arguments: every conversion target is declared in the file.
// Command-line flags override per-target settings.
//
//	targets:
//	  - name: web ui
//	    paths:
//	      - public/locales/*/translation.json
//	    out_dir: public/locales-icu
//	    format: json
//	  - name: emails
//	    paths:
//	      - emails/i18n
//	    suffix: .icu
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".icukit.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .icukit.yaml structure.
type File struct {
	// Targets is the list of conversion targets.
	Targets []Target `yaml:"targets"`
}

// Target describes one set of translation files to convert.
type Target struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name"`
	// Paths are files, directories, or glob patterns to convert.
	Paths []string `yaml:"paths"`
	// OutDir is the output directory (default: next to each source).
	OutDir string `yaml:"out_dir,omitempty"`
	// Format is the output format: "json", "yaml", or empty to keep the
	// source format.
	Format string `yaml:"format,omitempty"`
	// Suffix is inserted before the output extension (e.g. ".icu").
	Suffix string `yaml:"suffix,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load loads and validates .icukit.yaml from the given directory.
// Returns nil if no .icukit.yaml exists.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("%s: no targets declared", path)
	}

	for i := range f.Targets {
		t := &f.Targets[i]
		if t.Name == "" {
			return nil, fmt.Errorf("%s: target #%d has no name", path, i+1)
		}
		if len(t.Paths) == 0 {
			return nil, fmt.Errorf("%s: target %q has no paths", path, t.Name)
		}
		switch t.Format {
		case "", "json", "yaml":
		default:
			return nil, fmt.Errorf("%s: target %q has unknown format %q (valid: json, yaml)", path, t.Name, t.Format)
		}
	}

	return &f, nil
}
