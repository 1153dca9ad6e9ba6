// Package businessflow contains the core business logic and use cases for carbon accounting workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User and auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Organization errors
	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrNoOrganization         = errors.New("user does not belong to an organization")
	ErrAlreadyInOrganization  = errors.New("user already belongs to an organization")
	ErrFiscalIDTaken          = errors.New("fiscal ID is already registered")
	ErrInviteeAlreadyAttached = errors.New("invited user already belongs to an organization")
	ErrCannotChangeOwnRole    = errors.New("cannot change own role")
	ErrCannotRemoveSelf       = errors.New("cannot remove self from organization")

	// Authorization errors
	ErrForbidden        = errors.New("access denied")
	ErrInsufficientRole = errors.New("insufficient role for this operation")

	// Facility errors
	ErrFacilityNotFound = errors.New("facility not found")
	ErrCityNotFound     = errors.New("city not found in geocode table")

	// Data entry errors
	ErrEntryNotFound      = errors.New("data entry not found")
	ErrCategoryNotFound   = errors.New("emission category not found")
	ErrNoCategoryMatch    = errors.New("no emission category matches the document")
	ErrEmptyUpdate        = errors.New("at least one field must be provided for update")
	ErrInvalidQuantity    = errors.New("quantity must be non-negative")
	ErrInvalidEntryDate   = errors.New("entry date is invalid")
	ErrDocumentRequired   = errors.New("document file is required")
	ErrDocumentUnreadable = errors.New("document file could not be read")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
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

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsOrganizationNotFound(err error) bool {
	return errors.Is(err, ErrOrganizationNotFound)
}

func IsNoOrganization(err error) bool {
	return errors.Is(err, ErrNoOrganization)
}

func IsAlreadyInOrganization(err error) bool {
	return errors.Is(err, ErrAlreadyInOrganization)
}

func IsFiscalIDTaken(err error) bool {
	return errors.Is(err, ErrFiscalIDTaken)
}

func IsInviteeAlreadyAttached(err error) bool {
	return errors.Is(err, ErrInviteeAlreadyAttached)
}

func IsCannotChangeOwnRole(err error) bool {
	return errors.Is(err, ErrCannotChangeOwnRole)
}

func IsCannotRemoveSelf(err error) bool {
	return errors.Is(err, ErrCannotRemoveSelf)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInsufficientRole(err error) bool {
	return errors.Is(err, ErrInsufficientRole)
}

func IsFacilityNotFound(err error) bool {
	return errors.Is(err, ErrFacilityNotFound)
}

func IsCityNotFound(err error) bool {
	return errors.Is(err, ErrCityNotFound)
}

func IsEntryNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsNoCategoryMatch(err error) bool {
	return errors.Is(err, ErrNoCategoryMatch)
}

func IsEmptyUpdate(err error) bool {
	return errors.Is(err, ErrEmptyUpdate)
}

func IsInvalidQuantity(err error) bool {
	return errors.Is(err, ErrInvalidQuantity)
}

func IsInvalidEntryDate(err error) bool {
	return errors.Is(err, ErrInvalidEntryDate)
}

func IsDocumentRequired(err error) bool {
	return errors.Is(err, ErrDocumentRequired)
}

func IsDocumentUnreadable(err error) bool {
	return errors.Is(err, ErrDocumentUnreadable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
