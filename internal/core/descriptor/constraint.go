package descriptor

import (
	"encoding/json"
	"strconv"
)

// Constraint is a field rule normalized from either the descriptor's own
// properties or its custom rule list. Message is set only for custom rules.
type Constraint struct {
	Kind    RuleKind
	Bound   float64
	Pattern string
	Message string
}

// Constraints lists every rule compiled for f: descriptor properties first, in
// a fixed order, then custom rules in declaration order. Custom rules whose
// parameter cannot be read are skipped.
func (f Field) Constraints() []Constraint {
	var out []Constraint
	if f.Required {
		out = append(out, Constraint{Kind: RuleRequired})
	}
	if f.Kind == FieldEmail {
		out = append(out, Constraint{Kind: RuleEmail})
	}
	if f.MinLength != nil {
		out = append(out, Constraint{Kind: RuleMinLength, Bound: float64(*f.MinLength)})
	}
	if f.MaxLength != nil {
		out = append(out, Constraint{Kind: RuleMaxLength, Bound: float64(*f.MaxLength)})
	}
	if f.Min != nil {
		out = append(out, Constraint{Kind: RuleMin, Bound: *f.Min})
	}
	if f.Max != nil {
		out = append(out, Constraint{Kind: RuleMax, Bound: *f.Max})
	}
	if f.Pattern != "" {
		out = append(out, Constraint{Kind: RulePattern, Pattern: f.Pattern})
	}

	for _, r := range f.Rules {
		c := Constraint{Kind: r.Kind, Message: r.Message}
		switch r.Kind {
		case RuleRequired, RuleEmail:
		case RuleMinLength, RuleMaxLength, RuleMin, RuleMax:
			n, ok := Number(r.Value)
			if !ok {
				continue
			}
			c.Bound = n
		case RulePattern:
			p, ok := r.Value.(string)
			if !ok || p == "" {
				continue
			}
			c.Pattern = p
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// Number reads v as a float64. Strings are parsed; booleans and other types are
// not numbers.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FormatBound prints a rule parameter the way messages show it: 6, not 6.000000.
func FormatBound(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
