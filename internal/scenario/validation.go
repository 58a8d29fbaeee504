package scenario

import (
	"fmt"
	"strings"
)

// ValidateRule checks that a rule is well-formed before persistence.
//
// The condition literal is deliberately not type-checked here: literals
// are parsed at evaluation time, and a malformed literal skips the rule
// rather than blocking creation.
func ValidateRule(r *Rule) error {
	if r.DeviceTypeID == "" {
		return fmt.Errorf("%w: device_type_id is required", ErrInvalidRule)
	}
	if !isKnownCondition(r.WeatherCondition) {
		return fmt.Errorf("%w: unknown weather condition %q", ErrInvalidRule, r.WeatherCondition)
	}
	if !isKnownOperator(r.Operator) {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidRule, r.Operator)
	}
	if strings.TrimSpace(r.ConditionValue) == "" {
		return fmt.Errorf("%w: condition_value is required", ErrInvalidRule)
	}
	if strings.TrimSpace(r.NewStatus) == "" {
		return fmt.Errorf("%w: new_status is required", ErrInvalidRule)
	}
	return nil
}

func isKnownCondition(kind string) bool {
	for _, k := range ConditionKinds {
		if kind == k {
			return true
		}
	}
	return false
}

func isKnownOperator(op string) bool {
	for _, o := range Operators {
		if op == o {
			return true
		}
	}
	return false
}
