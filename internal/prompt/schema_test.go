package prompt

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, in string) map[string]any {
	t.Helper()
	m, err := ParseDefinition([]byte(in))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	return m
}

func TestValidateSchema(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `
name: code-review
title: Code Review
description: Reviews code for common problems
category: engineering
tags: [review, code, review]
template: "Review this {{language}} code"
variables:
  - name: language
    type: enum
    required: true
    values: [Go, Rust]
  - name: strictness
    type: number
    min: 1
    max: 10
  - name: summary
    type: text
    max_length: 200
examples:
  - title: Basic
    variables:
      language: Go
    output: "Review this Go code"
`)

	def, errs := ValidateSchema("f.yaml", m)
	if len(errs) != 0 {
		t.Fatalf("errs: got %v", errs)
	}
	if def.Name != "code-review" || def.Title != "Code Review" || def.Category != "engineering" {
		t.Fatalf("def: got %#v", def)
	}
	if len(def.Tags) != 2 {
		t.Fatalf("tags should deduplicate: got %v", def.Tags)
	}
	if len(def.Variables) != 3 {
		t.Fatalf("variables: got %d", len(def.Variables))
	}

	lang := def.Variables[0]
	if lang.Type != TypeEnum || !lang.Required || len(lang.Values) != 2 {
		t.Fatalf("lang: got %#v", lang)
	}
	strictness := def.Variables[1]
	if strictness.Type != TypeNumber || strictness.Min == nil || *strictness.Min != 1 || strictness.Max == nil || *strictness.Max != 10 {
		t.Fatalf("strictness: got %#v", strictness)
	}
	if strictness.Required {
		t.Fatalf("required should default to false")
	}
	summary := def.Variables[2]
	if summary.MaxLength == nil || *summary.MaxLength != 200 {
		t.Fatalf("summary: got %#v", summary)
	}

	if len(def.Examples) != 1 || def.Examples[0].Title != "Basic" || def.Examples[0].Variables["language"] != "Go" {
		t.Fatalf("examples: got %#v", def.Examples)
	}
}

func TestValidateSchema_Defaults(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `
name: minimal
title: Minimal
description: Smallest valid definition
template: "hello"
`)
	def, errs := ValidateSchema("f.yaml", m)
	if len(errs) != 0 {
		t.Fatalf("errs: got %v", errs)
	}
	if len(def.Tags) != 0 || len(def.Variables) != 0 || len(def.Examples) != 0 {
		t.Fatalf("defaults: got %#v", def)
	}
}

func TestValidateSchema_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	m := mustParse(t, `
name: 42
tags: notalist
variables:
  - type: rocket
  - name: n
    type: number
    required: yes please
`)
	_, errs := ValidateSchema("f.yaml", m)

	wantFields := []string{
		"name",
		"title",
		"description",
		"template",
		"tags",
		"variables[0].name",
		"variables[0].type",
		"variables[1].required",
	}
	if len(errs) != len(wantFields) {
		t.Fatalf("errs: got %d %v want %d", len(errs), errs, len(wantFields))
	}
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		if e.File != "f.yaml" {
			t.Fatalf("file: got %q", e.File)
		}
		seen[e.Field] = true
	}
	for _, f := range wantFields {
		if !seen[f] {
			t.Fatalf("missing error for field %q in %v", f, errs)
		}
	}
}

func TestValidateSchema_FieldConstraints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name: "max_length on number",
			yaml: `
variables:
  - name: n
    type: number
    max_length: 3
`,
			field: "variables[0].max_length",
		},
		{
			name: "min on text",
			yaml: `
variables:
  - name: s
    type: text
    min: 3
`,
			field: "variables[0].min",
		},
		{
			name: "values on text",
			yaml: `
variables:
  - name: s
    type: text
    values: [a]
`,
			field: "variables[0].values",
		},
		{
			name: "min above max",
			yaml: `
variables:
  - name: n
    type: number
    min: 10
    max: 1
`,
			field: "variables[0].min",
		},
		{
			name: "negative max_length",
			yaml: `
variables:
  - name: s
    type: text
    max_length: -1
`,
			field: "variables[0].max_length",
		},
		{
			name: "example without title",
			yaml: `
examples:
  - variables:
      x: 1
`,
			field: "examples[0].title",
		},
	}

	const base = `
name: t
title: T
description: D
template: "x"
`
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, errs := ValidateSchema("f.yaml", mustParse(t, base+c.yaml))
			for _, e := range errs {
				if e.Field == c.field {
					return
				}
			}
			t.Fatalf("expected error on %q, got %v", c.field, errs)
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	t.Parallel()

	e := ValidationError{File: "a.yaml", Field: "name", Message: "required field is missing"}
	if got := e.Error(); !strings.Contains(got, "a.yaml") || !strings.Contains(got, "name") {
		t.Fatalf("Error: got %q", got)
	}
	e.Field = ""
	if got := e.Error(); got != "a.yaml: required field is missing" {
		t.Fatalf("Error: got %q", got)
	}
}
