package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrPlanNotFound          = errors.New("invoice has no installment plan")
	ErrPlanAlreadyExists     = errors.New("invoice already has an installment plan")
	ErrInstallmentNotFound   = errors.New("installment not found in schedule")
	ErrInstallmentSettled    = errors.New("installment is already fully paid")
	ErrInvalidPaymentAmount  = errors.New("payment amount must be greater than zero")
	ErrVersionConflict       = errors.New("invoice was modified concurrently")
	ErrNotificationRunFailed = errors.New("notification run failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError names the offending input field. Validation always rejects
// before any state mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrCodeValidation, e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvoiceNotFound    = "INVOICE_NOT_FOUND"
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodePlanAlreadyExists  = "PLAN_ALREADY_EXISTS"
	ErrCodeInstallmentMissing = "INSTALLMENT_NOT_FOUND"
	ErrCodeAlreadySettled     = "INSTALLMENT_ALREADY_SETTLED"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT_AMOUNT"
	ErrCodeVersionConflict    = "VERSION_CONFLICT"
	ErrCodePartialBatch       = "PARTIAL_BATCH_FAILURE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvoiceNotFound(storeID, invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvoiceNotFound,
		fmt.Sprintf("invoice %s not found in store %s", invoiceID, storeID),
		ErrInvoiceNotFound,
	)
}

func WrapPlanNotFound(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("invoice %s has no installment plan", invoiceID),
		ErrPlanNotFound,
	)
}

func WrapPlanAlreadyExists(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanAlreadyExists,
		fmt.Sprintf("invoice %s already has an installment plan", invoiceID),
		ErrPlanAlreadyExists,
	)
}

func WrapInstallmentNotFound(number int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentMissing,
		fmt.Sprintf("installment %d not found in schedule", number),
		ErrInstallmentNotFound,
	)
}

func WrapInstallmentSettled(number int) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadySettled,
		fmt.Sprintf("installment %d is already fully paid", number),
		ErrInstallmentSettled,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPayment,
		fmt.Sprintf("invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapVersionConflict(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeVersionConflict,
		fmt.Sprintf("invoice %s was modified by another session, retry the payment", invoiceID),
		ErrVersionConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
