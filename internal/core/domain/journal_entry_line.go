package domain

import "github.com/shopspring/decimal"

// JournalEntryLine is a single posting within a journal entry: a debit or a
// credit against one account. AccountID references external account reference
// data and is treated as opaque here; its existence is not verified.
type JournalEntryLine struct {
	ID             int64                  `json:"id"`
	JournalEntryID int64                  `json:"journalEntryID"`
	AccountID      int64                  `json:"accountID"`
	Debit          decimal.Decimal        `json:"debit"`
	Credit         decimal.Decimal        `json:"credit"`
	Description    string                 `json:"description"`
	Documents      []JournalEntryDocument `json:"documents,omitempty"`
}

// IsValid reports whether the line amounts are acceptable: both non-negative,
// exactly one of them greater than zero.
func (l *JournalEntryLine) IsValid() bool {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return false
	}
	debitPositive := l.Debit.IsPositive()
	creditPositive := l.Credit.IsPositive()
	return debitPositive != creditPositive
}

// NetAmount returns debit - credit for this line.
func (l *JournalEntryLine) NetAmount() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}
