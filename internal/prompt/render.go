package prompt

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mailgun/raymond/v2"
)

// RenderResult carries either rendered text or an ordered list of
// human-readable errors, never both. Warnings are non-fatal observations
// (currently: supplied variables no declaration matches).
type RenderResult struct {
	Text     string   `json:"text,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether rendering produced text.
func (r *RenderResult) OK() bool {
	return r != nil && len(r.Errors) == 0
}

// Render validates the supplied variables against the definition's variable
// declarations and, when every check passes, substitutes them into the
// template. Variable errors are collected in full before the call fails; the
// substitution phase never runs when any variable error exists.
func Render(def *Definition, vars map[string]any) *RenderResult {
	res := &RenderResult{}
	if def == nil {
		res.Errors = append(res.Errors, "nil definition")
		return res
	}

	data := make(map[string]any, len(vars))

	// Phase 1: validate every declared variable, collecting all errors.
	for _, v := range def.Variables {
		val, supplied := vars[v.Name]

		if absent(val, supplied) {
			if v.Required {
				res.Errors = append(res.Errors, fmt.Sprintf("missing required variable %q", v.Name))
				continue
			}
			if v.Default != nil {
				data[v.Name] = v.Default
			}
			continue
		}

		if msg := checkVariable(v, val); msg != "" {
			res.Errors = append(res.Errors, msg)
			continue
		}
		data[v.Name] = val
	}

	declared := make(map[string]struct{}, len(def.Variables))
	for _, v := range def.Variables {
		declared[v.Name] = struct{}{}
	}
	var unknown []string
	for k := range vars {
		if _, ok := declared[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown variable %q supplied", k))
	}

	if len(res.Errors) > 0 {
		return res
	}

	// Phase 2: compile and evaluate. Any engine failure is a single render
	// error, distinct from the variable errors above.
	registerHelpers()
	tpl, err := raymond.Parse(def.Template)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("render failed: %v", err))
		return res
	}
	out, err := tpl.Exec(data)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("render failed: %v", err))
		return res
	}

	res.Text = out
	return res
}

// absent reports whether a variable counts as missing: not supplied, null, or
// an empty string.
func absent(val any, supplied bool) bool {
	if !supplied || val == nil {
		return true
	}
	s, ok := val.(string)
	return ok && s == ""
}

// checkVariable applies the type rule for one supplied variable and returns a
// human-readable error message, or "" when the value is acceptable.
func checkVariable(v Variable, val any) string {
	switch v.Type {
	case TypeText:
		s, ok := val.(string)
		if !ok {
			return fmt.Sprintf("variable %q must be a string, got %T", v.Name, val)
		}
		if v.MaxLength != nil && utf8.RuneCountInString(s) > *v.MaxLength {
			return fmt.Sprintf("variable %q exceeds maximum length %d", v.Name, *v.MaxLength)
		}
	case TypeNumber:
		f, ok := asFloat(val)
		if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Sprintf("variable %q must be a finite number, got %v", v.Name, val)
		}
		if v.Min != nil && f < *v.Min {
			return fmt.Sprintf("variable %q must be >= %v", v.Name, *v.Min)
		}
		if v.Max != nil && f > *v.Max {
			return fmt.Sprintf("variable %q must be <= %v", v.Name, *v.Max)
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return fmt.Sprintf("variable %q must be a boolean, got %T", v.Name, val)
		}
	case TypeEnum:
		s, ok := val.(string)
		if !ok {
			return fmt.Sprintf("variable %q must be a string, got %T", v.Name, val)
		}
		for _, allowed := range v.Values {
			if s == allowed {
				return ""
			}
		}
		return fmt.Sprintf("variable %q must be one of: %s", v.Name, strings.Join(v.Values, ", "))
	case TypeArray:
		if _, ok := asSequence(val); !ok {
			return fmt.Sprintf("variable %q must be a sequence, got %T", v.Name, val)
		}
	}
	return ""
}
