package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/example/examportal/internal/ui"
)

// emailPattern is deliberately loose: one @, then a dot somewhere after it
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form gives access to the controls of the submitted form
type Form interface {
	// Lookup finds a control by id, falling back to name. ok is false when
	// no such control exists.
	Lookup(id, name string) (value string, ok bool)
}

// ValuesForm is a Form over submitted values. Controls are keyed by id or
// name; only the first value of each key is used.
type ValuesForm url.Values

// Lookup implements Form
func (f ValuesForm) Lookup(id, name string) (string, bool) {
	if id != "" {
		if vs, ok := f[id]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	if name != "" {
		if vs, ok := f[name]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// FieldSpec names a required control and its optional error message
type FieldSpec struct {
	ID      string
	Name    string
	Message string
}

func (f FieldSpec) message() string {
	if f.Message != "" {
		return f.Message
	}
	label := f.Name
	if label == "" {
		label = f.ID
	}
	return fmt.Sprintf("%s is required", label)
}

// ValidateRequired returns one error per field that is missing from the form
// or blank after trimming, in field order. An empty result means valid.
func ValidateRequired(form Form, fields []FieldSpec) []string {
	errs := []string{}
	for _, field := range fields {
		value, ok := form.Lookup(field.ID, field.Name)
		if !ok || strings.TrimSpace(value) == "" {
			errs = append(errs, field.message())
		}
	}
	return errs
}

// ValidateEmail reports whether value looks like an email address
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// Validator reports validation errors to the user
type Validator struct {
	notifier ui.Notifier
}

// New creates a Validator that shows errors through notifier
func New(notifier ui.Notifier) *Validator {
	return &Validator{notifier: notifier}
}

// ShowErrors shows errs as one message and reports whether the form is valid
func (v *Validator) ShowErrors(errs []string) bool {
	if len(errs) == 0 {
		return true
	}
	if v.notifier != nil {
		v.notifier.ShowError(strings.Join(errs, ", "))
	}
	return false
}
