package descriptor

import (
	"encoding/json"
	"slices"

	"github.com/invopop/jsonschema"
)

// JSONSchema exports the form's fields and rules as a JSON Schema object.
// When several rules of one kind apply, the strictest bound wins.
func (c FormConfig) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Version:              jsonschema.Version,
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}

	for _, f := range c.Fields {
		prop := &jsonschema.Schema{
			Title:       f.Label,
			Description: f.Hint,
			ReadOnly:    f.Disabled,
		}
		switch f.Kind {
		case FieldNumber:
			prop.Type = "number"
		case FieldCheckbox:
			prop.Type = "boolean"
		case FieldEmail:
			prop.Type = "string"
			prop.Format = "email"
		case FieldDate:
			prop.Type = "string"
			prop.Format = "date"
		default:
			prop.Type = "string"
		}
		if len(f.Options) > 0 {
			prop.Enum = make([]any, 0, len(f.Options))
			for _, o := range f.Options {
				prop.Enum = append(prop.Enum, o.Value)
			}
		}

		for _, con := range f.Constraints() {
			switch con.Kind {
			case RuleRequired:
				if !slices.Contains(s.Required, f.Key) {
					s.Required = append(s.Required, f.Key)
				}
			case RuleEmail:
				prop.Format = "email"
			case RuleMinLength:
				n := uint64(con.Bound)
				if prop.MinLength == nil || n > *prop.MinLength {
					prop.MinLength = &n
				}
			case RuleMaxLength:
				n := uint64(con.Bound)
				if prop.MaxLength == nil || n < *prop.MaxLength {
					prop.MaxLength = &n
				}
			case RuleMin:
				if cur, ok := Number(prop.Minimum); !ok || con.Bound > cur {
					prop.Minimum = json.Number(FormatBound(con.Bound))
				}
			case RuleMax:
				if cur, ok := Number(prop.Maximum); !ok || con.Bound < cur {
					prop.Maximum = json.Number(FormatBound(con.Bound))
				}
			case RulePattern:
				prop.Pattern = con.Pattern
			}
		}
		s.Properties.Set(f.Key, prop)
	}
	return s
}
