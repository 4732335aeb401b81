package foundation

import (
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Collector accumulates field errors so a single validation pass can report
// every problem in an input file at once.
type Collector struct {
	errs []FieldError
}

// Add records a failure.
func (c *Collector) Add(field, code, message string, value any) {
	c.errs = append(c.errs, FieldError{Field: field, Code: code, Message: message, Value: value})
}

// Addf records a failure with a formatted message.
func (c *Collector) Addf(field, code, format string, args ...any) {
	c.Add(field, code, fmt.Sprintf(format, args...), nil)
}

// Required records a failure when value is empty.
func (c *Collector) Required(field, value string) {
	if value == "" {
		c.Add(field, "required", "is required", nil)
	}
}

// OneOf records a failure when value is not among allowed.
func OneOf[T comparable](c *Collector, field string, value T, allowed ...T) {
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	c.Add(field, "one_of", fmt.Sprintf("must be one of %v", allowed), value)
}

// Errors returns the recorded failures.
func (c *Collector) Errors() []FieldError { return c.errs }

// Err converts the collected failures into a fatal validation error whose cause
// joins one classified finding per field. Returns nil when nothing was recorded.
func (c *Collector) Err(message string) error {
	if len(c.errs) == 0 {
		return nil
	}
	findings := make([]error, 0, len(c.errs))
	for _, fe := range c.errs {
		b := errors.ValidationError(fe.Message).WithContext("field", fe.Field)
		if fe.Value != nil {
			b = b.WithContext("value", fe.Value)
		}
		findings = append(findings, b.Build())
	}
	return errors.WrapError(stderrors.Join(findings...), errors.CategoryValidation, message).
		Fatal().
		UserAction().
		WithContext("problems", len(c.errs)).
		Build()
}
