package prompt

import (
	"fmt"
	"os"
)

// Load runs the full pipeline over a directory: scan, parse, schema
// validation, cross-reference validation. One malformed file never blocks the
// rest of the directory; every failure is collected into the returned stats.
// The returned error is non-nil only when the root itself cannot be scanned.
func Load(dir string) ([]*Definition, Stats, error) {
	paths, warnings, err := Scan(dir)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{TotalFiles: len(paths), Warnings: warnings}
	defs := make([]*Definition, 0, len(paths))
	byName := make(map[string]string, len(paths))

	for _, path := range paths {
		res := loadFile(path)
		if !res.OK() {
			stats.Failed++
			stats.Errors = append(stats.Errors, res.Errors...)
			continue
		}

		// Definition names are unique across the whole directory; the
		// lexicographically first file wins.
		if prev, dup := byName[res.Definition.Name]; dup {
			stats.Failed++
			stats.Errors = append(stats.Errors, ValidationError{
				File:    path,
				Field:   "name",
				Message: fmt.Sprintf("duplicate definition name %q (already defined in %s)", res.Definition.Name, prev),
			})
			continue
		}
		byName[res.Definition.Name] = path

		stats.Succeeded++
		defs = append(defs, res.Definition)
	}

	return defs, stats, nil
}

// loadFile runs a single file through parser, schema validator and
// cross-reference validator.
func loadFile(path string) LoadResult {
	res := LoadResult{File: path}

	b, err := os.ReadFile(path)
	if err != nil {
		res.Errors = append(res.Errors, ValidationError{
			File:    path,
			Message: fmt.Sprintf("read: %v", err),
		})
		return res
	}

	raw, err := ParseDefinition(b)
	if err != nil {
		res.Errors = append(res.Errors, ValidationError{
			File:    path,
			Message: err.Error(),
		})
		return res
	}

	def, errs := ValidateSchema(path, raw)
	if len(errs) > 0 {
		res.Errors = errs
		return res
	}

	if errs := ValidateReferences(path, def); len(errs) > 0 {
		res.Errors = errs
		return res
	}

	res.Definition = def
	return res
}
