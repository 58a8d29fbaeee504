package evaluation

import "errors"

// Sentinel errors for condition evaluation and run orchestration.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownCondition is returned when a rule names a condition kind
	// outside the supported vocabulary.
	ErrUnknownCondition = errors.New("evaluation: unknown condition kind")

	// ErrUnknownOperator is returned when a rule's operator is not one of
	// ">", "<", "=".
	ErrUnknownOperator = errors.New("evaluation: unknown operator")

	// ErrMalformedLiteral is returned when a rule's condition value cannot
	// be parsed to the type its condition kind requires.
	ErrMalformedLiteral = errors.New("evaluation: malformed condition literal")

	// ErrRunFailed wraps collaborator or persistence failures that abort
	// an evaluation run.
	ErrRunFailed = errors.New("evaluation: run failed")
)
