// Package businessflow contains the core business logic and use cases for the directory
package businessflow

import (
	"errors"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
)

// Business flow error constants
var (
	// Agency-related errors
	ErrAgencyNotFound     = errors.New("agency not found")
	ErrAgencyNameRequired = errors.New("agency name is required")
	ErrAgencyNameTaken    = errors.New("agency name is already taken")
	ErrAgencyIDRequired   = errors.New("agency id must be greater than 0")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsAgencyNotFound(err error) bool {
	return errors.Is(err, ErrAgencyNotFound)
}

func IsAgencyNameTaken(err error) bool {
	return errors.Is(err, ErrAgencyNameTaken)
}

// IsInvalidPageSize matches both the flow's own validation and the sentinel
// the storage layer returns.
func IsInvalidPageSize(err error) bool {
	return errors.Is(err, models.ErrInvalidPageSize)
}
