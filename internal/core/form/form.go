// Package form interprets a descriptor.FormConfig into a live, validated form.
// The HTTP layer binds posted values into it and renders its Fields view.
package form

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
)

// ValidationError lists the message of every invalid field, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == domain.ErrValidation }

type control struct {
	field   descriptor.Field
	checks  []check
	value   any
	touched bool
}

// Form holds one control per field descriptor, in descriptor order.
type Form struct {
	cfg      descriptor.FormConfig
	controls []*control
	byKey    map[string]*control

	onSubmit func(descriptor.Record)
	onCancel func()
}

// New builds the form. Each control starts from initial[key], or the empty
// value when initial has no such key.
func New(cfg descriptor.FormConfig, initial descriptor.Record) *Form {
	f := &Form{
		cfg:   cfg,
		byKey: make(map[string]*control, len(cfg.Fields)),
	}
	for _, fd := range cfg.Fields {
		c := &control{field: fd, checks: compile(fd), value: emptyValue(fd)}
		if v, ok := initial[fd.Key]; ok && v != nil {
			c.value = v
		}
		f.controls = append(f.controls, c)
		f.byKey[fd.Key] = c
	}
	return f
}

func emptyValue(fd descriptor.Field) any {
	if fd.Kind == descriptor.FieldCheckbox {
		return false
	}
	return ""
}

// Config returns the configuration the form was built from.
func (f *Form) Config() descriptor.FormConfig { return f.cfg }

// OnSubmit registers the hook that receives valid submitted values.
func (f *Form) OnSubmit(fn func(descriptor.Record)) { f.onSubmit = fn }

// OnCancel registers the cancellation hook.
func (f *Form) OnCancel(fn func()) { f.onCancel = fn }

// SetInitial re-applies new initial data to the live controls without
// rebuilding them. Keys that match no field are ignored.
func (f *Form) SetInitial(data descriptor.Record) {
	f.SetValue(data)
}

// SetValue patches the controls named in data, disabled ones included.
func (f *Form) SetValue(data descriptor.Record) {
	for k, v := range data {
		if c, ok := f.byKey[k]; ok {
			c.value = v
		}
	}
}

// Bind copies user input from a posted HTML form. Disabled fields keep their
// value. An unchecked checkbox is absent from a post and binds to false.
func (f *Form) Bind(in url.Values) {
	for _, c := range f.controls {
		if c.field.Disabled {
			continue
		}
		switch c.field.Kind {
		case descriptor.FieldCheckbox:
			switch in.Get(c.field.Key) {
			case "on", "true", "1":
				c.value = true
			default:
				c.value = false
			}
		case descriptor.FieldNumber:
			raw := strings.TrimSpace(in.Get(c.field.Key))
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				c.value = n
			} else {
				c.value = raw
			}
		default:
			c.value = in.Get(c.field.Key)
		}
	}
}

// Value returns every field value, disabled fields included.
func (f *Form) Value() descriptor.Record {
	out := make(descriptor.Record, len(f.controls))
	for _, c := range f.controls {
		out[c.field.Key] = c.value
	}
	return out
}

// Valid reports whether every control passes its rules.
func (f *Form) Valid() bool {
	for _, c := range f.controls {
		if len(c.failing()) > 0 {
			return false
		}
	}
	return true
}

// Submit returns the full value mapping and calls the submit hook when every
// field is valid. Otherwise it marks every field touched and returns a
// *ValidationError.
func (f *Form) Submit() (descriptor.Record, error) {
	invalid := make(map[string]string)
	for _, c := range f.controls {
		if failing := c.failing(); len(failing) > 0 {
			invalid[c.field.Key] = message(c.field, failing)
		}
	}
	if len(invalid) > 0 {
		for _, c := range f.controls {
			c.touched = true
		}
		return nil, &ValidationError{Fields: invalid}
	}

	values := f.Value()
	if f.onSubmit != nil {
		f.onSubmit(values)
	}
	return values, nil
}

// Cancel signals cancellation. Values and touched state are left alone.
func (f *Form) Cancel() {
	if f.onCancel != nil {
		f.onCancel()
	}
}

// Reset empties every control and clears touched state.
func (f *Form) Reset() {
	for _, c := range f.controls {
		c.value = emptyValue(c.field)
		c.touched = false
	}
}

// Touch marks one field touched.
func (f *Form) Touch(key string) {
	if c, ok := f.byKey[key]; ok {
		c.touched = true
	}
}

func (c *control) failing() []descriptor.Constraint {
	var out []descriptor.Constraint
	for _, ch := range c.checks {
		if !ch.passes(c.value) {
			out = append(out, ch.Constraint)
		}
	}
	return out
}

// OptionView is one choice of a select or radio control.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FieldView is the render model of one control.
type FieldView struct {
	descriptor.Field
	Value   any
	Input   string
	Checked bool
	Touched bool
	Error   string
	Choices []OptionView
}

// HasError reports whether an error message should be shown.
func (v FieldView) HasError() bool { return v.Error != "" }

// Fields returns the render model. An error is only visible once the field is
// touched and invalid.
func (f *Form) Fields() []FieldView {
	out := make([]FieldView, 0, len(f.controls))
	for _, c := range f.controls {
		v := FieldView{
			Field:   c.field,
			Value:   c.value,
			Input:   inputText(c.field, c.value),
			Touched: c.touched,
		}
		if b, ok := c.value.(bool); ok {
			v.Checked = b
		}
		if c.touched {
			v.Error = message(c.field, c.failing())
		}
		for _, o := range c.field.Options {
			ov := OptionView{Value: toString(o.Value), Label: o.Label}
			ov.Selected = ov.Value == v.Input
			v.Choices = append(v.Choices, ov)
		}
		out = append(out, v)
	}
	return out
}

// inputText renders a value for an HTML input. Date controls accept RFC 3339
// timestamps from the server and show them as yyyy-mm-dd.
func inputText(fd descriptor.Field, v any) string {
	if fd.Kind == descriptor.FieldDate {
		switch x := v.(type) {
		case time.Time:
			return x.Format("2006-01-02")
		case string:
			if t, err := time.Parse(time.RFC3339, x); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	if fd.Kind == descriptor.FieldCheckbox {
		return ""
	}
	return toString(v)
}

// Title returns a heading for the form derived from its mode.
func Title(entity string, mode descriptor.FormMode) string {
	if mode == descriptor.ModeEdit {
		return fmt.Sprintf("Modifier %s", entity)
	}
	return fmt.Sprintf("Nouveau %s", entity)
}
