package services

import (
	"context"

	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	"github.com/read424/walrex-contable-sub001/internal/dto"
)

// JournalEntrySvcFacade is the use-case surface for journal entries.
type JournalEntrySvcFacade interface {
	// CreateJournalEntry validates the candidate, allocates its correlatives and
	// persists the aggregate atomically. Validation failures surface as
	// apperrors.InvalidJournalEntryError or apperrors.UnbalancedJournalEntryError
	// before any transaction is opened.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error)

	// GetJournalEntryByID returns the full aggregate or apperrors.ErrNotFound.
	GetJournalEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error)

	// ListJournalEntries returns a page of entries matching the filter.
	ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.PagedJournalEntriesResponse, error)

	// VoidJournalEntry, SoftDeleteJournalEntry and RestoreJournalEntry are part of
	// the port contract but deferred; they return apperrors.ErrNotImplemented.
	VoidJournalEntry(ctx context.Context, entryID int64) error
	SoftDeleteJournalEntry(ctx context.Context, entryID int64) error
	RestoreJournalEntry(ctx context.Context, entryID int64) error
}

// DocumentStorageSvcFacade stores uploaded supporting documents on disk and
// returns their metadata for persistence alongside the owning line.
type DocumentStorageSvcFacade interface {
	// StoreDocument decodes and writes one upload. Malformed content surfaces as
	// apperrors.InvalidJournalEntryError.
	StoreDocument(ctx context.Context, upload dto.DocumentUploadRequest) (domain.JournalEntryDocument, error)

	// RemoveDocument deletes a stored file; removing an already-deleted file is
	// not an error.
	RemoveDocument(ctx context.Context, doc domain.JournalEntryDocument) error
}
