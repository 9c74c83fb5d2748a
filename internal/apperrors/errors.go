package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrNotImplemented indicates an operation that is declared on a port but
// deliberately deferred (update, void, soft delete and restore of entries).
var ErrNotImplemented = errors.New("operation not implemented")

// AppError wraps a lower-level error with an HTTP-ish status code and a message.
// Repositories use it to surface persistence failures without leaking driver details.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidJournalEntryError indicates a journal entry that violates a structural
// business rule. Field names the offending part of the entry.
type InvalidJournalEntryError struct {
	Field  string
	Reason string
}

func (e *InvalidJournalEntryError) Error() string {
	return fmt.Sprintf("invalid journal entry (%s): %s", e.Field, e.Reason)
}

func (e *InvalidJournalEntryError) Is(target error) bool {
	return target == ErrValidation
}

// NewInvalidJournalEntryError creates a new InvalidJournalEntryError.
func NewInvalidJournalEntryError(field, reason string) *InvalidJournalEntryError {
	return &InvalidJournalEntryError{Field: field, Reason: reason}
}

// UnbalancedJournalEntryError indicates that the total debits of an entry do not
// equal its total credits. It carries the totals so clients can pinpoint the
// discrepancy without re-deriving it.
type UnbalancedJournalEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
}

func (e *UnbalancedJournalEntryError) Error() string {
	return fmt.Sprintf("unbalanced journal entry: total debit %s, total credit %s, difference %s",
		e.TotalDebit.String(), e.TotalCredit.String(), e.Difference.String())
}

func (e *UnbalancedJournalEntryError) Is(target error) bool {
	return target == ErrValidation
}

// NewUnbalancedJournalEntryError creates a new UnbalancedJournalEntryError from the totals.
func NewUnbalancedJournalEntryError(totalDebit, totalCredit decimal.Decimal) *UnbalancedJournalEntryError {
	return &UnbalancedJournalEntryError{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Difference:  totalDebit.Sub(totalCredit),
	}
}
