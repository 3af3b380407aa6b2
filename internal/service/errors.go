package service

import "errors"

// Common service errors
var (
	// ErrForbidden is returned when a principal is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState is returned when an operation conflicts with the
	// resource's current lifecycle state
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrCompanyNotFound is returned when a company is not found
	ErrCompanyNotFound = errors.New("company not found")

	// ErrSellerNotFound is returned when a seller is not found
	ErrSellerNotFound = errors.New("seller not found")

	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")

	// ErrProductNotFound is returned when a product is not found
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateTaxID is returned when a tax id is already registered
	ErrDuplicateTaxID = errors.New("tax id already registered")

	// ErrDuplicateEmail is returned when an email is already registered
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateSKU is returned when a SKU already exists within the company
	ErrDuplicateSKU = errors.New("sku already exists for company")

	// ErrDuplicateRepresentation is returned when a pending request or an
	// active representation already exists for the pair
	ErrDuplicateRepresentation = errors.New("representation or pending request already exists")

	// ErrCompanyInUse is returned when deleting a company that is still referenced
	ErrCompanyInUse = errors.New("company is referenced by other records")

	// ErrProductCompanyMismatch is returned when a quotation references a
	// product owned by a different company
	ErrProductCompanyMismatch = errors.New("product does not belong to quotation company")

	// ErrSequenceExhausted is returned when number allocation keeps
	// colliding after the bounded retry budget
	ErrSequenceExhausted = errors.New("document number sequence exhausted")
)
