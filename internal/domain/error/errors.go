package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidAmount        = 4002
	CodeInvalidDirection     = 4003
	CodeDuplicateTransaction = 4004
	CodeConstraintViolation  = 4005
	CodeInvalidRequest       = 4006
	CodeManuallyVerified     = 4090
	CodeTransactionNotFound  = 4040
	CodeCategoryNotFound     = 4041

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5001
	CodeDatabaseOperation  = 5002
	CodeOracleUnavailable  = 5030
	CodeOracleTimeout      = 5040
)

// Base error types
var (
	// ErrInvalidAmount is returned when an amount is missing, zero or negative
	ErrInvalidAmount = errors.New("amount must be a positive decimal")

	// ErrInvalidDirection is returned when a direction is neither debit nor credit
	ErrInvalidDirection = errors.New("invalid transaction direction")

	// ErrDuplicateTransaction is returned when a transaction with the same reference number already exists
	ErrDuplicateTransaction = errors.New("transaction with this reference number already exists")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCategoryNotFound is returned when a category name does not match any active category
	ErrCategoryNotFound = errors.New("category not found")

	// ErrManuallyVerified is returned when automatic categorization targets a manually verified record
	ErrManuallyVerified = errors.New("transaction category was manually verified")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrDatabaseOperation is returned when a database statement fails for a non-constraint reason
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrOracleUnavailable is returned when the semantic oracle is not configured or failed to initialize
	ErrOracleUnavailable = errors.New("semantic oracle unavailable")

	// ErrOracleTimeout is returned when the semantic oracle did not answer in time
	ErrOracleTimeout = errors.New("semantic oracle timed out")

	// ErrMalformedOracleResponse is returned when the oracle answer cannot be used
	ErrMalformedOracleResponse = errors.New("malformed oracle response")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidDirection):
		return CodeInvalidDirection
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrManuallyVerified):
		return CodeManuallyVerified
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrCategoryNotFound):
		return CodeCategoryNotFound
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	case errors.Is(err, ErrDatabaseOperation):
		return CodeDatabaseOperation
	case errors.Is(err, ErrOracleUnavailable):
		return CodeOracleUnavailable
	case errors.Is(err, ErrOracleTimeout):
		return CodeOracleTimeout
	default:
		return CodeInternalServer
	}
}

// TransactionError represents an error raised while handling one transaction
type TransactionError struct {
	Operation       string
	ReferenceNumber string
	TransactionID   uint64
	Reason          string
	Err             error
}

// Error implements the error interface for TransactionError
func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s failed for transaction %d (reference: %s): %s - %v",
		e.Operation, e.TransactionID, e.ReferenceNumber, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":       "transaction_error",
		"operation":        e.Operation,
		"transaction_id":   e.TransactionID,
		"reference_number": e.ReferenceNumber,
		"reason":           e.Reason,
		"error":            e.Err.Error(),
		"error_code":       ErrorCode(e.Err),
	}
}

// NewTransactionError creates a detailed transaction error
func NewTransactionError(operation string, transactionID uint64, referenceNumber, reason string, err error) error {
	return &TransactionError{
		Operation:       operation,
		ReferenceNumber: referenceNumber,
		TransactionID:   transactionID,
		Reason:          reason,
		Err:             err,
	}
}

// DuplicateTransactionError provides detailed information about a redelivered message
type DuplicateTransactionError struct {
	ReferenceNumber string
	ExistingID      uint64
}

// Error implements the error interface
func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction detected: reference=%s already stored as %d",
		e.ReferenceNumber, e.ExistingID)
}

// Is checks if the target error is an ErrDuplicateTransaction
func (e *DuplicateTransactionError) Is(target error) bool {
	return target == ErrDuplicateTransaction
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateTransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":       "duplicate_transaction",
		"reference_number": e.ReferenceNumber,
		"existing_id":      e.ExistingID,
		"error_code":       CodeDuplicateTransaction,
	}
}

// NewDuplicateTransactionError creates a new detailed duplicate transaction error
func NewDuplicateTransactionError(referenceNumber string, existingID uint64) error {
	return &DuplicateTransactionError{
		ReferenceNumber: referenceNumber,
		ExistingID:      existingID,
	}
}

// OracleError wraps a failed oracle call with the operation that issued it
type OracleError struct {
	Operation string
	Err       error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Operation, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *OracleError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "oracle_error",
		"operation":  e.Operation,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewOracleError creates an oracle error for the given operation
func NewOracleError(operation string, err error) error {
	return &OracleError{Operation: operation, Err: err}
}

// IsDuplicateTransactionError checks if the error is a duplicate transaction error
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

// IsOracleFailure reports whether the error means the oracle could not give a usable answer
func IsOracleFailure(err error) bool {
	return errors.Is(err, ErrOracleUnavailable) ||
		errors.Is(err, ErrOracleTimeout) ||
		errors.Is(err, ErrMalformedOracleResponse)
}
