package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	"github.com/read424/walrex-contable-sub001/internal/dto"
)

// JournalEntryReader defines read operations over the journal-entry projection.
type JournalEntryReader interface {
	// FindJournalEntryByID retrieves a full aggregate (entry, lines, documents) by id.
	FindJournalEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries matching the filter, plus the
	// total number of matching entries.
	ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, int64, error)
}

// JournalEntryWriter defines write operations for journal entries.
type JournalEntryWriter interface {
	// CreateJournalEntry persists the aggregate atomically: correlative allocation,
	// the entry row, its lines in input order and their documents all commit or
	// roll back together. It returns the aggregate populated with generated ids,
	// correlatives and timestamps.
	CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// UpdateJournalEntry is declared for contract parity and returns
	// apperrors.ErrNotImplemented: committed entries are immutable.
	UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// VoidJournalEntry marks an entry VOID. Deferred; returns apperrors.ErrNotImplemented.
	VoidJournalEntry(ctx context.Context, entryID int64) error

	// SoftDeleteJournalEntry is deferred; returns apperrors.ErrNotImplemented.
	SoftDeleteJournalEntry(ctx context.Context, entryID int64) error

	// RestoreJournalEntry is deferred; returns apperrors.ErrNotImplemented.
	RestoreJournalEntry(ctx context.Context, entryID int64) error
}

// CorrelativeAllocator hands out monotonic sequence numbers with a storage-native
// atomic increment. Both methods must run inside the transaction that will persist
// the entry referencing the number, so an aborted transaction never leaks a value
// onto a committed row. Concurrent callers for the same scope never receive the
// same value; gaps after rollbacks are acceptable.
type CorrelativeAllocator interface {
	// NextBookCorrelative allocates the next number scoped to (bookType, year).
	NextBookCorrelative(ctx context.Context, tx pgx.Tx, bookType domain.BookType, year int) (int, error)

	// NextOperationNumber allocates the next number scoped to year across all book types.
	NextOperationNumber(ctx context.Context, tx pgx.Tx, year int) (int, error)
}

// JournalEntryRepositoryFacade combines all journal-entry repository interfaces.
type JournalEntryRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}
