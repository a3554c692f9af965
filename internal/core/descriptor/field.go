// Package descriptor holds the declarative schemas that drive the dynamic
// form and table renderers. Descriptors are plain data, authored once per
// screen and never mutated by a renderer.
package descriptor

// FieldKind is the input control of a form field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldPassword FieldKind = "password"
	FieldNumber   FieldKind = "number"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
	FieldDate     FieldKind = "date"
	FieldRadio    FieldKind = "radio"
)

// RuleKind names a validation primitive. Descriptor messages, custom rules and
// built-in defaults all key on these names.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleEmail     RuleKind = "email"
	RuleMinLength RuleKind = "minLength"
	RuleMaxLength RuleKind = "maxLength"
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
	RulePattern   RuleKind = "pattern"
)

// Rule is a custom validation rule attached to a field. Value is the rule
// parameter: a length or bound for the numeric kinds, a regular expression for
// pattern, unused otherwise.
type Rule struct {
	Kind    RuleKind `json:"type"`
	Value   any      `json:"value,omitempty"`
	Message string   `json:"message"`
}

// Option is one choice of a select or radio field.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Field describes one form control.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Hint        string    `json:"hint,omitempty"`
	Class       string    `json:"class,omitempty"`
	Rows        int       `json:"rows,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Disabled    bool      `json:"disabled,omitempty"`

	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`

	Rules    []Rule              `json:"validators,omitempty"`
	Options  []Option            `json:"options,omitempty"`
	Messages map[RuleKind]string `json:"errorMessages,omitempty"`
}

// FormMode selects between creating and editing a record.
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// FormConfig is the configuration of a dynamic form.
type FormConfig struct {
	Fields      []Field  `json:"fields"`
	SubmitLabel string   `json:"submitLabel,omitempty"`
	CancelLabel string   `json:"cancelLabel,omitempty"`
	Mode        FormMode `json:"mode,omitempty"`
}

// EffectiveMode returns Mode, defaulting to create.
func (c FormConfig) EffectiveMode() FormMode {
	if c.Mode == "" {
		return ModeCreate
	}
	return c.Mode
}

// SubmitText returns the submit button label.
func (c FormConfig) SubmitText() string {
	if c.SubmitLabel != "" {
		return c.SubmitLabel
	}
	if c.EffectiveMode() == ModeEdit {
		return "Modifier"
	}
	return "Créer"
}

// CancelText returns the cancel button label.
func (c FormConfig) CancelText() string {
	if c.CancelLabel != "" {
		return c.CancelLabel
	}
	return "Annuler"
}

// Ptr returns a pointer to v, for the optional numeric descriptor fields.
func Ptr[T any](v T) *T { return &v }
