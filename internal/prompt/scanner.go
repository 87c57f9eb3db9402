package prompt

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Scan recursively enumerates definition files under root. Only files with a
// .yaml or .yml extension are returned, in lexicographic path order.
// Unreadable directories and entries are skipped and reported as warnings.
func Scan(root string) (paths []string, warnings []string, err error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil, fmt.Errorf("prompt: empty scan root")
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, warnings, fmt.Errorf("prompt: scan %q: %w", root, walkErr)
	}

	// WalkDir visits entries in lexical order per directory, which keeps the
	// result deterministic across runs.
	return paths, warnings, nil
}
