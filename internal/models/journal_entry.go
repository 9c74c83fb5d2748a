package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry mirrors the journal_entries table.
type JournalEntry struct {
	ID              int64      `db:"id"`
	EntryDate       time.Time  `db:"entry_date"`
	BookType        string     `db:"book_type"`
	Description     string     `db:"description"`
	Reference       *string    `db:"reference"`
	OperationNumber int        `db:"operation_number"`
	BookCorrelative int        `db:"book_correlative"`
	Status          string     `db:"status"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

// JournalEntryLine mirrors the journal_entry_lines table.
type JournalEntryLine struct {
	ID             int64           `db:"id"`
	JournalEntryID int64           `db:"journal_entry_id"`
	AccountID      int64           `db:"account_id"`
	Debit          decimal.Decimal `db:"debit"`
	Credit         decimal.Decimal `db:"credit"`
	Description    string          `db:"description"`
	LineOrder      int             `db:"line_order"`
}

// JournalEntryDocument mirrors the journal_entry_documents table.
type JournalEntryDocument struct {
	ID                 int64     `db:"id"`
	JournalEntryLineID int64     `db:"journal_entry_line_id"`
	OriginalFilename   string    `db:"original_filename"`
	StoredFilename     string    `db:"stored_filename"`
	FilePath           string    `db:"file_path"`
	MimeType           string    `db:"mime_type"`
	FileSizeBytes      int64     `db:"file_size_bytes"`
	UploadedAt         time.Time `db:"uploaded_at"`
}
