package application

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxCategoryPoints bounds the magnitude of any configured category value.
const MaxCategoryPoints = 1000

// registerCustomValidators registers domain-specific validation functions
// with the validator instance, including semantic version validation
// and event-specific validation rules.
// registerCustomValidators returns an error if any validator registration fails.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := RegisterEventValidators(v); err != nil {
		return fmt.Errorf("failed to register event validators: %w", err)
	}

	return nil
}

// RegisterEventValidators registers the validation functions referenced by
// EventConfig struct tags.
// RegisterEventValidators returns an error if any registration fails.
func RegisterEventValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("points", validatePoints); err != nil {
		return fmt.Errorf("failed to register points validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validatePoints accepts finite point values within ±MaxCategoryPoints.
// Negative values are allowed for penalty categories.
func validatePoints(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return math.Abs(v) <= MaxCategoryPoints
}

// validateSemantics checks rules that cannot be expressed through struct
// tags: reference node names must be unique ignoring case and surrounding
// whitespace, and category names must not carry surrounding whitespace
// since tags are trimmed before lookup.
func validateSemantics(config *EventConfig) error {
	seen := make(map[string]string, len(config.ReferenceNodes))
	for _, node := range config.ReferenceNodes {
		key := strings.ToLower(strings.TrimSpace(node.Name))
		if prev, exists := seen[key]; exists {
			return fmt.Errorf("duplicate reference node %q: already defined as %q", node.Name, prev)
		}
		seen[key] = node.Name
	}

	for name := range config.Categories {
		if strings.TrimSpace(name) != name {
			return fmt.Errorf("category %q has leading or trailing whitespace", name)
		}
		if strings.Contains(name, ",") {
			return fmt.Errorf("category %q contains a comma, which separates tags", name)
		}
	}

	return nil
}
