package prompt

import (
	"fmt"
	"sort"

	"github.com/mailgun/raymond/v2/ast"
	"github.com/mailgun/raymond/v2/parser"
)

// ValidateReferences checks the semantic invariants of a structurally valid
// definition: unique variable names, non-empty enum value lists, template
// references that resolve to declared variables, and example variable maps
// that only use declared names. All violations are collected.
func ValidateReferences(file string, def *Definition) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{
			File:    file,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	declared := make(map[string]struct{}, len(def.Variables))
	for _, v := range def.Variables {
		if v.Name == "" {
			continue
		}
		if _, dup := declared[v.Name]; dup {
			add("variables", "duplicate variable name %q", v.Name)
			continue
		}
		declared[v.Name] = struct{}{}

		if v.Type == TypeEnum && len(v.Values) == 0 {
			add("variables", "enum variable %q must declare a non-empty values list", v.Name)
		}
	}

	prog, err := parser.Parse(def.Template)
	if err != nil {
		add("template", "does not parse: %v", err)
	} else {
		for _, name := range templateRefs(prog) {
			if _, ok := declared[name]; !ok {
				add("template", "references undeclared variable %q", name)
			}
		}
	}

	for i, ex := range def.Examples {
		keys := make([]string, 0, len(ex.Variables))
		for k := range ex.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := declared[k]; !ok {
				add(fmt.Sprintf("examples[%d]", i), "example %q uses undeclared variable %q", ex.Title, k)
			}
		}
	}

	return errs
}

// templateRefs extracts the variable identifiers a template references, one
// entry per distinct identifier in first-seen order. Helper names are excluded;
// helper-call arguments are treated as variable references.
func templateRefs(prog *ast.Program) []string {
	c := &refCollector{seen: make(map[string]struct{})}
	c.program(prog, nil)
	return c.refs
}

type refCollector struct {
	refs []string
	seen map[string]struct{}
}

func (c *refCollector) program(p *ast.Program, scope map[string]struct{}) {
	if p == nil {
		return
	}
	if len(p.BlockParams) > 0 {
		inner := make(map[string]struct{}, len(scope)+len(p.BlockParams))
		for k := range scope {
			inner[k] = struct{}{}
		}
		for _, bp := range p.BlockParams {
			inner[bp] = struct{}{}
		}
		scope = inner
	}
	for _, n := range p.Body {
		c.node(n, scope)
	}
}

func (c *refCollector) node(n ast.Node, scope map[string]struct{}) {
	switch node := n.(type) {
	case *ast.MustacheStatement:
		c.expression(node.Expression, scope)
	case *ast.BlockStatement:
		c.expression(node.Expression, scope)
		c.program(node.Program, scope)
		c.program(node.Inverse, scope)
	}
}

func (c *refCollector) expression(e *ast.Expression, scope map[string]struct{}) {
	if e == nil {
		return
	}
	c.operand(e.Path, scope)
	for _, p := range e.Params {
		c.operand(p, scope)
	}
	if e.Hash != nil {
		for _, pair := range e.Hash.Pairs {
			c.operand(pair.Val, scope)
		}
	}
}

func (c *refCollector) operand(n ast.Node, scope map[string]struct{}) {
	switch node := n.(type) {
	case *ast.SubExpression:
		c.expression(node.Expression, scope)
	case *ast.PathExpression:
		c.path(node, scope)
	}
}

func (c *refCollector) path(pe *ast.PathExpression, scope map[string]struct{}) {
	// Data references (@index, @key, ...) and scoped paths (this.x, ./x) do
	// not name variables.
	if pe.Data || pe.Scoped || len(pe.Parts) == 0 {
		return
	}
	name := pe.Parts[0]
	if isHelperName(name) {
		return
	}
	if _, ok := scope[name]; ok {
		return
	}
	if _, dup := c.seen[name]; dup {
		return
	}
	c.seen[name] = struct{}{}
	c.refs = append(c.refs, name)
}
