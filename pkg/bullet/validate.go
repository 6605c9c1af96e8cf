package bullet

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation matches every [*ValidationError] via errors.Is.
var ErrValidation = errors.New("invalid bullet input")

// ValidationError reports input that violates the chart contract.
// It is a caller error: retrying the same input fails the same way.
type ValidationError struct {
	Field  string // offending input field, e.g. "values"
	Count  int    // number of items supplied, when relevant
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("bullet: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks in against the chart contract. It is run by [Configure]
// on every call, so callers that reconfigure a chart with new data get the
// same checks as at construction.
//
// Oversized value sets are rejected rather than truncated.
func Validate(in Input) error {
	if err := validateSet("values", in.Values); err != nil {
		return err
	}
	if err := validateSet("secondary_values", in.SecondaryValues); err != nil {
		return err
	}
	if in.PrimaryTarget == nil {
		return &ValidationError{Field: "primary_target", Reason: "is required"}
	}
	if err := validateValue("primary_target", *in.PrimaryTarget); err != nil {
		return err
	}
	if in.SecondaryTarget != nil {
		if err := validateValue("secondary_target", *in.SecondaryTarget); err != nil {
			return err
		}
	}
	if in.Scale != nil {
		if err := validateValue("scale", *in.Scale); err != nil {
			return err
		}
	}
	return nil
}

func validateSet(field string, items []Item) error {
	switch n := len(items); {
	case n == 0:
		return &ValidationError{Field: field, Reason: "requires at least one value"}
	case n > MaxValues:
		return &ValidationError{
			Field:  field,
			Count:  n,
			Reason: fmt.Sprintf("accepts at most %d values, got %d", MaxValues, n),
		}
	}
	for i, it := range items {
		if err := validateValue(fmt.Sprintf("%s[%d]", field, i), it); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(field string, it Item) error {
	if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("value must be finite, got %v", it.Value)}
	}
	return nil
}
