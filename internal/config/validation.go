package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the cross-field rules of Config.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(forwardValidation, ForwardConfig{})

	return &Validator{validate: v}
}

func forwardValidation(sl validator.StructLevel) {
	f, ok := sl.Current().Interface().(ForwardConfig)
	if ok && f.brokers() > 1 {
		sl.ReportError(f, "Forward", "Forward", "single_broker", "")
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}

	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(),
			e.Tag(),
			e.Value(),
		))
	}

	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
