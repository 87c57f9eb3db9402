package prompt

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/mailgun/raymond/v2"
)

// helperFuncs is the fixed helper library available inside templates. All
// helpers are pure: same inputs, same output, no side effects.
var helperFuncs = map[string]interface{}{
	"capitalize":   helperCapitalize,
	"upper":        helperUpper,
	"lower":        helperLower,
	"titleCase":    helperTitleCase,
	"kebabCase":    helperKebabCase,
	"join":         helperJoin,
	"first":        helperFirst,
	"last":         helperLast,
	"length":       helperLength,
	"default":      helperDefault,
	"eq":           helperEq,
	"neq":          helperNeq,
	"gt":           helperGt,
	"lt":           helperLt,
	"formatNumber": helperFormatNumber,
}

// builtinHelpers are the engine's own block and utility helpers. Together with
// helperFuncs they form the set of identifiers excluded from cross-reference
// checks.
var builtinHelpers = map[string]struct{}{
	"if":     {},
	"unless": {},
	"each":   {},
	"with":   {},
	"lookup": {},
	"log":    {},
	"equal":  {},
	"else":   {},
}

var registerOnce sync.Once

// registerHelpers installs the helper library into the engine's global
// registry. The engine panics on duplicate registration, so this must run
// exactly once per process.
func registerHelpers() {
	registerOnce.Do(func() {
		raymond.RegisterHelpers(helperFuncs)
	})
}

// isHelperName reports whether name refers to a library or engine helper.
func isHelperName(name string) bool {
	if _, ok := helperFuncs[name]; ok {
		return true
	}
	_, ok := builtinHelpers[name]
	return ok
}

// HelperNames returns the library helper names in sorted order.
func HelperNames() []string {
	out := make([]string, 0, len(helperFuncs))
	for name := range helperFuncs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func helperCapitalize(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func helperUpper(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.ToUpper(s)
}

func helperLower(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.ToLower(s)
}

func helperTitleCase(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	fields := strings.Fields(s)
	for i, word := range fields {
		r := []rune(strings.ToLower(word))
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

func helperKebabCase(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// helperJoin joins sequence elements with a separator. A non-string separator
// falls back to ", "; a non-sequence value yields the empty string.
func helperJoin(v interface{}, sep interface{}) interface{} {
	items, ok := asSequence(v)
	if !ok {
		return ""
	}
	s, ok := sep.(string)
	if !ok {
		s = ", "
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = raymond.Str(item)
	}
	return strings.Join(parts, s)
}

func helperFirst(v interface{}) interface{} {
	items, ok := asSequence(v)
	if !ok || len(items) == 0 {
		return ""
	}
	return items[0]
}

func helperLast(v interface{}) interface{} {
	items, ok := asSequence(v)
	if !ok || len(items) == 0 {
		return ""
	}
	return items[len(items)-1]
}

func helperLength(v interface{}) interface{} {
	items, ok := asSequence(v)
	if !ok {
		return 0
	}
	return len(items)
}

// helperDefault returns fallback when v is falsy: absent, nil, empty string,
// numeric zero, or false.
func helperDefault(v interface{}, fallback interface{}) interface{} {
	if isFalsy(v) {
		return fallback
	}
	return v
}

func helperEq(a, b interface{}) interface{} {
	return looseEqual(a, b)
}

func helperNeq(a, b interface{}) interface{} {
	return !looseEqual(a, b)
}

func helperGt(a, b interface{}) interface{} {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af > bf
}

func helperLt(a, b interface{}) interface{} {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af < bf
}

// helperFormatNumber renders a number with thousands grouping. Non-numeric
// input is returned unchanged.
func helperFormatNumber(v interface{}) interface{} {
	f, ok := asFloat(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func asSequence(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]interface{}); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func isFalsy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	default:
		if f, ok := asFloat(v); ok {
			return f == 0
		}
		return false
	}
}

// looseEqual compares numbers by value regardless of Go type, everything else
// by deep equality.
func looseEqual(a, b interface{}) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}
