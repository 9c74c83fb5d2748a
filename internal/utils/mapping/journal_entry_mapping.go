package mapping

import (
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	"github.com/read424/walrex-contable-sub001/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		ID:              d.ID,
		EntryDate:       d.EntryDate,
		BookType:        string(d.BookType),
		Description:     d.Description,
		Reference:       d.Reference,
		OperationNumber: d.OperationNumber,
		BookCorrelative: d.BookCorrelative,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// ToDomainJournalEntry converts a model JournalEntry header to a domain JournalEntry.
// Lines are loaded and attached separately.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		ID:              m.ID,
		EntryDate:       m.EntryDate,
		BookType:        domain.BookType(m.BookType),
		Description:     m.Description,
		Reference:       m.Reference,
		OperationNumber: m.OperationNumber,
		BookCorrelative: m.BookCorrelative,
		Status:          domain.EntryStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToDomainJournalEntryLine converts a model line to a domain line.
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		ID:             m.ID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Description:    m.Description,
	}
}

// ToDomainJournalEntryDocument converts a model document to a domain document.
func ToDomainJournalEntryDocument(m models.JournalEntryDocument) domain.JournalEntryDocument {
	return domain.JournalEntryDocument{
		ID:                 m.ID,
		JournalEntryLineID: m.JournalEntryLineID,
		OriginalFilename:   m.OriginalFilename,
		StoredFilename:     m.StoredFilename,
		FilePath:           m.FilePath,
		MimeType:           m.MimeType,
		FileSizeBytes:      m.FileSizeBytes,
		UploadedAt:         m.UploadedAt,
	}
}
