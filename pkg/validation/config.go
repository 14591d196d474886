package validation

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config section name for error messages
}

// NewConfigValidator creates a new config validator for the named section.
func NewConfigValidator(section string) *ConfigValidator {
	return &ConfigValidator{name: section}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) *ConfigValidator {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
	return cv
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		return cv.fail(field, "required field is empty")
	}
	return cv
}

// RangeInt validates that an int field is within [min, max].
func (cv *ConfigValidator) RangeInt(field string, value, min, max int) *ConfigValidator {
	if value < min || value > max {
		return cv.fail(field, "value %d is outside range [%d, %d]", value, min, max)
	}
	return cv
}

// RangeFloat validates that a float field is within the open interval (min, max).
func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if !(value > min && value < max) {
		return cv.fail(field, "value %g is outside range (%g, %g)", value, min, max)
	}
	return cv
}

// MinDuration validates that a duration is at least the minimum.
func (cv *ConfigValidator) MinDuration(field string, value, min time.Duration) *ConfigValidator {
	if value < min {
		return cv.fail(field, "duration %v is below minimum %v", value, min)
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed ...string) *ConfigValidator {
	if !slices.Contains(allowed, value) {
		return cv.fail(field, "value %q must be one of %v", value, allowed)
	}
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate joins every collected error, or returns nil.
func (cv *ConfigValidator) Validate() error {
	return errors.Join(cv.errors...)
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
