package dto

import "github.com/shopspring/decimal"

// Stable machine-readable error codes returned by the API.
const (
	CodeInvalidEntry    = "INVALID_ENTRY"
	CodeUnbalancedEntry = "UNBALANCED_ENTRY"
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorResponse is the structured error body for every non-2xx response.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// UnbalancedDetails carries the totals of an unbalanced entry so the client
// can pinpoint the discrepancy without re-deriving it.
type UnbalancedDetails struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Difference  decimal.Decimal `json:"difference"`
}

// InvalidEntryDetails names the offending field of an invalid entry.
type InvalidEntryDetails struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
