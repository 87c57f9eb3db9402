package prompt

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDefinition decodes raw YAML into a generic mapping. It performs no
// schema interpretation: the result is a dynamic tree of
// nil/bool/int/float64/string/[]any/map[string]any values.
func ParseDefinition(data []byte) (map[string]any, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("prompt: parse: %w", err)
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("prompt: parse: root must be a mapping, got %T", root)
	}
	return m, nil
}
