package audit

import "errors"

// Error taxonomy for audit operations. Workers map these onto response
// codes; the handler marks only connectivity failures as retryable.
var (
	// ErrParse marks a stored document that is not a valid audit record.
	// Bulk readers skip such records and continue.
	ErrParse = errors.New("invalid audit record")

	// ErrValidation marks a submission with missing or invalid form
	// fields. The operation is not attempted.
	ErrValidation = errors.New("validation failed")
)
