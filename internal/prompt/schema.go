package prompt

import (
	"fmt"
	"math"
	"strings"
)

// ValidateSchema coerces a decoded mapping into a Definition, collecting every
// structural violation instead of stopping at the first. Defaults are applied
// for optional fields. The returned Definition is only meaningful when the
// error list is empty.
func ValidateSchema(file string, raw map[string]any) (*Definition, []ValidationError) {
	v := &schemaValidator{file: file}
	def := &Definition{}

	def.Name = v.requiredString(raw, "name")
	def.Title = v.requiredString(raw, "title")
	def.Description = v.requiredString(raw, "description")
	def.Category = v.optionalString(raw, "category")
	def.Tags = v.stringList(raw, "tags")
	def.Template = v.requiredString(raw, "template")
	def.Variables = v.variables(raw)
	def.Examples = v.examples(raw)

	return def, v.errs
}

type schemaValidator struct {
	file string
	errs []ValidationError
}

func (v *schemaValidator) addError(field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		File:    v.file,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *schemaValidator) requiredString(raw map[string]any, field string) string {
	val, ok := raw[field]
	if !ok || val == nil {
		v.addError(field, "required field is missing")
		return ""
	}
	s, ok := val.(string)
	if !ok {
		v.addError(field, "must be a string, got %T", val)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		v.addError(field, "must not be empty")
		return ""
	}
	return s
}

func (v *schemaValidator) optionalString(raw map[string]any, field string) string {
	val, ok := raw[field]
	if !ok || val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		v.addError(field, "must be a string, got %T", val)
		return ""
	}
	return s
}

// stringList decodes an optional sequence of strings. Duplicates are dropped
// so tags behave as a set.
func (v *schemaValidator) stringList(raw map[string]any, field string) []string {
	val, ok := raw[field]
	if !ok || val == nil {
		return nil
	}
	seq, ok := val.([]any)
	if !ok {
		v.addError(field, "must be a sequence of strings, got %T", val)
		return nil
	}

	out := make([]string, 0, len(seq))
	seen := make(map[string]struct{}, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			v.addError(fmt.Sprintf("%s[%d]", field, i), "must be a string, got %T", item)
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (v *schemaValidator) variables(raw map[string]any) []Variable {
	val, ok := raw["variables"]
	if !ok || val == nil {
		return nil
	}
	seq, ok := val.([]any)
	if !ok {
		v.addError("variables", "must be a sequence, got %T", val)
		return nil
	}

	out := make([]Variable, 0, len(seq))
	for i, item := range seq {
		field := fmt.Sprintf("variables[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			v.addError(field, "must be a mapping, got %T", item)
			continue
		}
		out = append(out, v.variable(field, m))
	}
	return out
}

func (v *schemaValidator) variable(field string, m map[string]any) Variable {
	out := Variable{}

	if name, ok := m["name"].(string); ok && strings.TrimSpace(name) != "" {
		out.Name = name
	} else {
		v.addError(field+".name", "required field is missing or empty")
	}

	out.Type = v.variableType(field, m)
	out.Description = v.optionalStringIn(field, m, "description")
	out.Default = m["default"]

	if req, ok := m["required"]; ok && req != nil {
		if b, ok := req.(bool); ok {
			out.Required = b
		} else {
			v.addError(field+".required", "must be a boolean, got %T", req)
		}
	}

	if values, ok := m["values"]; ok && values != nil {
		out.Values = v.enumValues(field, values)
	}
	if out.Type != "" && out.Type != TypeEnum && len(out.Values) > 0 {
		v.addError(field+".values", "only valid for enum variables")
	}

	if ml, ok := m["max_length"]; ok && ml != nil {
		if n, ok := asInt(ml); ok && n >= 0 {
			if out.Type != "" && out.Type != TypeText {
				v.addError(field+".max_length", "only valid for text variables")
			} else {
				out.MaxLength = &n
			}
		} else {
			v.addError(field+".max_length", "must be a non-negative integer, got %v", ml)
		}
	}

	out.Min = v.bound(field, m, "min", out.Type)
	out.Max = v.bound(field, m, "max", out.Type)
	if out.Min != nil && out.Max != nil && *out.Min > *out.Max {
		v.addError(field+".min", "must not exceed max")
	}

	return out
}

func (v *schemaValidator) variableType(field string, m map[string]any) VariableType {
	raw, ok := m["type"]
	if !ok || raw == nil {
		v.addError(field+".type", "required field is missing")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.addError(field+".type", "must be a string, got %T", raw)
		return ""
	}
	switch t := VariableType(s); t {
	case TypeText, TypeNumber, TypeBoolean, TypeEnum, TypeArray:
		return t
	default:
		v.addError(field+".type", "must be one of text, number, boolean, enum, array; got %q", s)
		return ""
	}
}

func (v *schemaValidator) enumValues(field string, raw any) []string {
	seq, ok := raw.([]any)
	if !ok {
		v.addError(field+".values", "must be a sequence of strings, got %T", raw)
		return nil
	}
	out := make([]string, 0, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			v.addError(fmt.Sprintf("%s.values[%d]", field, i), "must be a string, got %T", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (v *schemaValidator) bound(field string, m map[string]any, key string, t VariableType) *float64 {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	f, ok := asFloat(raw)
	if !ok {
		v.addError(field+"."+key, "must be a number, got %T", raw)
		return nil
	}
	if t != "" && t != TypeNumber {
		v.addError(field+"."+key, "only valid for number variables")
		return nil
	}
	return &f
}

func (v *schemaValidator) optionalStringIn(field string, m map[string]any, key string) string {
	raw, ok := m[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.addError(field+"."+key, "must be a string, got %T", raw)
		return ""
	}
	return s
}

func (v *schemaValidator) examples(raw map[string]any) []Example {
	val, ok := raw["examples"]
	if !ok || val == nil {
		return nil
	}
	seq, ok := val.([]any)
	if !ok {
		v.addError("examples", "must be a sequence, got %T", val)
		return nil
	}

	out := make([]Example, 0, len(seq))
	for i, item := range seq {
		field := fmt.Sprintf("examples[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			v.addError(field, "must be a mapping, got %T", item)
			continue
		}

		ex := Example{}
		if title, ok := m["title"].(string); ok && strings.TrimSpace(title) != "" {
			ex.Title = title
		} else {
			v.addError(field+".title", "required field is missing or empty")
		}

		if vars, ok := m["variables"]; ok && vars != nil {
			vm, ok := vars.(map[string]any)
			if !ok {
				v.addError(field+".variables", "must be a mapping, got %T", vars)
			} else {
				ex.Variables = vm
			}
		}

		if output, ok := m["output"]; ok && output != nil {
			s, ok := output.(string)
			if !ok {
				v.addError(field+".output", "must be a string, got %T", output)
			} else {
				ex.Output = s
			}
		}

		out = append(out, ex)
	}
	return out
}

// asInt accepts YAML integers and integral floats.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
