package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookType classifies the accounting book an entry is recorded in. It scopes
// the book correlative sequence.
type BookType string

const (
	GeneralJournal BookType = "GENERAL_JOURNAL"
	SalesBook      BookType = "SALES"
	PurchasesBook  BookType = "PURCHASES"
)

// ParseBookType converts a string into a BookType, accepting any casing.
func ParseBookType(s string) (BookType, error) {
	switch BookType(strings.ToUpper(strings.TrimSpace(s))) {
	case GeneralJournal:
		return GeneralJournal, nil
	case SalesBook:
		return SalesBook, nil
	case PurchasesBook:
		return PurchasesBook, nil
	default:
		return "", fmt.Errorf("unknown book type %q", s)
	}
}

// EntryStatus indicates the state of a journal entry.
// ACTIVE is the initial status; VOID is terminal.
type EntryStatus string

const (
	EntryActive EntryStatus = "ACTIVE"
	EntryVoid   EntryStatus = "VOID"
)

// JournalEntry is a balanced set of debit/credit postings recorded in the
// general ledger, together with two correlative numbers:
//   - OperationNumber: sequential per calendar year across all book types.
//   - BookCorrelative: sequential per (book type, year).
//
// The whole aggregate (entry, lines, documents) is persisted in one atomic
// operation and is immutable once committed.
type JournalEntry struct {
	ID              int64              `json:"id"`
	EntryDate       time.Time          `json:"entryDate"`
	BookType        BookType           `json:"bookType"`
	Description     string             `json:"description"`
	Reference       *string            `json:"reference,omitempty"`
	OperationNumber int                `json:"operationNumber"`
	BookCorrelative int                `json:"bookCorrelative"`
	Status          EntryStatus        `json:"status"`
	Lines           []JournalEntryLine `json:"lines"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// FiscalYear returns the calendar year that scopes both correlative sequences.
func (e *JournalEntry) FiscalYear() int {
	return e.EntryDate.Year()
}

// TotalDebit sums the debit amounts of all lines using exact decimal arithmetic.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// TotalCredit sums the credit amounts of all lines using exact decimal arithmetic.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// BalanceDifference returns TotalDebit - TotalCredit. Zero for a balanced entry.
func (e *JournalEntry) BalanceDifference() decimal.Decimal {
	return e.TotalDebit().Sub(e.TotalCredit())
}

// IsBalanced reports whether total debits equal total credits exactly.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}

// HasMinimumLines reports whether the entry has the two lines double-entry requires.
func (e *JournalEntry) HasMinimumLines() bool {
	return len(e.Lines) >= 2
}

// IsVoided reports whether the entry has been voided.
func (e *JournalEntry) IsVoided() bool {
	return e.Status == EntryVoid
}
