// Package locate resolves command-line arguments into concrete lists of
// translation resource files.
//
// An argument may be a file path, a directory (scanned recursively for
// .json/.yaml/.yml files), or a glob pattern. Resolution is purely a
// discovery step — no file content is read.
package locate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExts are the file extensions recognized as translation resources.
var supportedExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Supported reports whether path has a recognized translation file extension.
func Supported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Resolve expands args into a deduplicated list of translation files.
// Files named directly are included as-is; directories are walked
// recursively; anything else is treated as a glob pattern.
//
// Zero matches across all args is a hard error: there is nothing to
// iterate over, so the whole batch aborts before any file is touched.
func Resolve(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			found, err := walkDir(arg)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}

		case err == nil:
			// A file named explicitly is included even with an unfamiliar
			// extension — the reader will reject it with a clearer error.
			add(arg)

		default:
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
			}
			for _, m := range matches {
				mi, err := os.Stat(m)
				if err != nil {
					continue
				}
				if mi.IsDir() {
					found, err := walkDir(m)
					if err != nil {
						return nil, err
					}
					for _, f := range found {
						add(f)
					}
				} else {
					add(m)
				}
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no translation files match %s", strings.Join(args, ", "))
	}

	return files, nil
}

// walkDir collects supported files under dir, sorted by path.
func walkDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
