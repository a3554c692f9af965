package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mboutique/backoffice/internal/core/descriptor"
)

var validate = validator.New()

// check is a compiled constraint. It reports whether value passes.
type check struct {
	descriptor.Constraint
	re *regexp.Regexp
}

func compile(f descriptor.Field) []check {
	cons := f.Constraints()
	out := make([]check, 0, len(cons))
	for _, c := range cons {
		ch := check{Constraint: c}
		if c.Kind == descriptor.RulePattern {
			// An invalid expression leaves re nil and the rule always fails.
			ch.re, _ = regexp.Compile(anchor(c.Pattern))
		}
		out = append(out, ch)
	}
	return out
}

// anchor makes a string pattern match the whole value.
func anchor(p string) string {
	if !strings.HasPrefix(p, "^") {
		p = "^" + p
	}
	if !strings.HasSuffix(p, "$") {
		p += "$"
	}
	return p
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	default:
		return false
	}
}

// passes evaluates the rule against v. Every rule except required accepts an
// empty value.
func (c check) passes(v any) bool {
	if c.Kind == descriptor.RuleRequired {
		return !isEmpty(v)
	}
	if isEmpty(v) {
		return true
	}

	switch c.Kind {
	case descriptor.RuleEmail:
		s, ok := v.(string)
		return ok && validate.Var(s, "email") == nil
	case descriptor.RuleMinLength, descriptor.RuleMaxLength:
		s, ok := v.(string)
		if !ok {
			return true
		}
		tag := "min="
		if c.Kind == descriptor.RuleMaxLength {
			tag = "max="
		}
		return validate.Var(s, tag+strconv.Itoa(int(c.Bound))) == nil
	case descriptor.RuleMin, descriptor.RuleMax:
		n, ok := descriptor.Number(v)
		if !ok {
			return true
		}
		tag := "min="
		if c.Kind == descriptor.RuleMax {
			tag = "max="
		}
		return validate.Var(n, tag+descriptor.FormatBound(c.Bound)) == nil
	case descriptor.RulePattern:
		if c.re == nil {
			return false
		}
		return c.re.MatchString(toString(v))
	}
	return true
}

// defaultMessage is the built-in text for a failing rule.
func defaultMessage(label string, c descriptor.Constraint) string {
	switch c.Kind {
	case descriptor.RuleRequired:
		return label + " est requis"
	case descriptor.RuleEmail:
		return "Email invalide"
	case descriptor.RuleMinLength:
		return fmt.Sprintf("Minimum %d caractères", int(c.Bound))
	case descriptor.RuleMaxLength:
		return fmt.Sprintf("Maximum %d caractères", int(c.Bound))
	case descriptor.RuleMin:
		return "Valeur minimum: " + descriptor.FormatBound(c.Bound)
	case descriptor.RuleMax:
		return "Valeur maximum: " + descriptor.FormatBound(c.Bound)
	case descriptor.RulePattern:
		return "Format invalide"
	}
	return "Erreur de validation"
}

// defaultOrder is the precedence of built-in messages.
var defaultOrder = []descriptor.RuleKind{
	descriptor.RuleRequired,
	descriptor.RuleEmail,
	descriptor.RuleMinLength,
	descriptor.RuleMaxLength,
	descriptor.RuleMin,
	descriptor.RuleMax,
	descriptor.RulePattern,
}

// message resolves the text shown for the failing rules of f: a descriptor
// message for a failing kind, then a custom rule message, then the built-in
// default. failing is in rule order; only the first rule of each kind counts.
func message(f descriptor.Field, failing []descriptor.Constraint) string {
	if len(failing) == 0 {
		return ""
	}
	first := make(map[descriptor.RuleKind]descriptor.Constraint, len(failing))
	for _, c := range failing {
		if _, ok := first[c.Kind]; !ok {
			first[c.Kind] = c
		}
	}

	for _, c := range failing {
		if msg := f.Messages[c.Kind]; msg != "" {
			return msg
		}
	}
	for _, r := range f.Rules {
		if _, ok := first[r.Kind]; ok && r.Message != "" {
			return r.Message
		}
	}
	for _, k := range defaultOrder {
		if c, ok := first[k]; ok {
			return defaultMessage(f.Label, c)
		}
	}
	return "Erreur de validation"
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return descriptor.FormatBound(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
