package prompt

import "fmt"

// VariableType enumerates the supported variable types.
type VariableType string

const (
	TypeText    VariableType = "text"
	TypeNumber  VariableType = "number"
	TypeBoolean VariableType = "boolean"
	TypeEnum    VariableType = "enum"
	TypeArray   VariableType = "array"
)

// Definition is a validated prompt template plus its metadata and variable
// declarations. It is immutable once accepted into the cache.
type Definition struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Variables   []Variable `json:"variables,omitempty"`
	Examples    []Example  `json:"examples,omitempty"`
	Template    string     `json:"template"`
}

// Variable declares a typed, named input slot a template may reference.
type Variable struct {
	Name        string       `json:"name"`
	Type        VariableType `json:"type"`
	Required    bool         `json:"required"`
	Description string       `json:"description,omitempty"`
	Default     any          `json:"default,omitempty"`
	Values      []string     `json:"values,omitempty"`     // enum only
	MaxLength   *int         `json:"max_length,omitempty"` // text only
	Min         *float64     `json:"min,omitempty"`        // number only
	Max         *float64     `json:"max,omitempty"`        // number only
}

// Example pairs a variable assignment with an optional expected output.
type Example struct {
	Title     string         `json:"title"`
	Variables map[string]any `json:"variables"`
	Output    string         `json:"output,omitempty"`
}

// ValidationError reports one load-time violation for a file. Field is empty
// when the violation is not tied to a specific field.
type ValidationError struct {
	File    string `json:"file"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// LoadResult is the outcome of loading a single file: either an accepted
// definition or one or more validation errors.
type LoadResult struct {
	File       string
	Definition *Definition
	Errors     []ValidationError
}

// OK reports whether the file produced an accepted definition.
func (r LoadResult) OK() bool {
	return r.Definition != nil && len(r.Errors) == 0
}

// Stats aggregates the outcome of one full directory load.
type Stats struct {
	TotalFiles int               `json:"total_files"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Errors     []ValidationError `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}
