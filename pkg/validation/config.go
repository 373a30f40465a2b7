package validation

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/exp/constraints"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

// URL validates that a field parses as an absolute http(s) URL or is a
// root-relative path such as "/api".
func (cv *ConfigValidator) URL(field, value string) *ConfigValidator {
	u, err := url.Parse(value)
	if err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
		return cv
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: unsupported scheme %q", cv.name, field, u.Scheme))
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %d must be positive", cv.name, field, value))
	}
	return cv
}

// PositiveFloat validates that a float field is positive (> 0).
func (cv *ConfigValidator) PositiveFloat(field string, value float64) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %g must be positive", cv.name, field, value))
	}
	return cv
}

// RangeFloat validates that a float field is within [min, max].
func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if value < min || value > max {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %g is outside range [%g, %g]", cv.name, field, value, min, max))
	}
	return cv
}

// RangeDuration validates that a duration is within the specified range.
func (cv *ConfigValidator) RangeDuration(field string, value, min, max time.Duration) *ConfigValidator {
	if value < min || value > max {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: duration %v is outside range [%v, %v]", cv.name, field, value, min, max))
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %q must be one of %v", cv.name, field, value, allowed))
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

// HasErrors returns true if any validation errors were recorded.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns a combined error if any validations failed.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	default:
		return fmt.Errorf("%s validation failed with %d errors: %w", cv.name, len(cv.errors), errors.Join(cv.errors...))
	}
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

// Clamp limits value to [min, max].
func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
