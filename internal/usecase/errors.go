package usecase

import "fmt"

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

var (
	// VALIDATION_ERROR
	ErrInvalidID = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "incorrect id",
	}
	ErrReviewTooShort = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "review_text must be at least 25 characters",
	}
	ErrRatingOutOfRange = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "rating must be an integer between 1 and 5",
	}
	ErrProofMissing = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "proof_url is required",
	}
	ErrInvalidMaxAssignments = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "max_assignments must be a positive integer",
	}
	ErrInvalidInput = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid input",
	}

	// NOT_FOUND
	ErrAssignmentNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "assignment not found or not awaiting submission",
	}
	ErrUserNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "user not found",
	}

	// STORE_FAILURE
	ErrStoreFailure = &DomainError{
		Code:    "STORE_FAILURE",
		Message: "storage temporarily unavailable",
	}
)
