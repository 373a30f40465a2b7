package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	MaxPropertyKey  = 100
	MaxNodeIDLength = 128

	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	nodeIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_\-:.]+$`)
)

func init() {
	validate = validator.New()
}

// Struct validates any struct carrying `validate` tags and returns the
// first failure as a "Field: reason" error.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNodeID checks that an id is safe to place in a URL path segment.
func ValidateNodeID(id string) error {
	if id == "" {
		return errors.New("node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return fmt.Errorf("node id exceeds maximum length of %d characters", MaxNodeIDLength)
	}
	if !nodeIDPattern.MatchString(id) {
		return fmt.Errorf("node id '%s' contains invalid characters", id)
	}
	return nil
}

// ValidatePropertyKey validates a property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
