package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	portsrepo "github.com/read424/walrex-contable-sub001/internal/core/ports/repositories"
	portssvc "github.com/read424/walrex-contable-sub001/internal/core/ports/services"
	"github.com/read424/walrex-contable-sub001/internal/dto"
	"github.com/read424/walrex-contable-sub001/internal/middleware"
)

// journalEntryService implements the journal-entry use cases: validate a
// candidate entry, then hand it to the repository which allocates correlatives
// and persists the aggregate in one transaction.
type journalEntryService struct {
	entryRepo portsrepo.JournalEntryRepositoryFacade
	docStore  portssvc.DocumentStorageSvcFacade
}

// NewJournalEntryService creates a new journal-entry service.
func NewJournalEntryService(entryRepo portsrepo.JournalEntryRepositoryFacade, docStore portssvc.DocumentStorageSvcFacade) portssvc.JournalEntrySvcFacade {
	return &journalEntryService{
		entryRepo: entryRepo,
		docStore:  docStore,
	}
}

var _ portssvc.JournalEntrySvcFacade = (*journalEntryService)(nil)

// validateJournalEntry runs the pure business checks over a candidate entry.
// It performs no I/O; a failure here guarantees nothing was written anywhere.
func (s *journalEntryService) validateJournalEntry(entry *domain.JournalEntry) error {
	if !entry.HasMinimumLines() {
		return apperrors.NewInvalidJournalEntryError("lines", "must have at least 2 lines")
	}

	// Balance is checked before the per-line rules, so an entry that breaks
	// both reports the unbalanced totals.
	if !entry.IsBalanced() {
		return apperrors.NewUnbalancedJournalEntryError(entry.TotalDebit(), entry.TotalCredit())
	}

	for i := range entry.Lines {
		line := &entry.Lines[i]
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return apperrors.NewInvalidJournalEntryError("line", "debit and credit must be greater than or equal to zero")
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return apperrors.NewInvalidJournalEntryError("line", "a line cannot have both debit and credit greater than zero")
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return apperrors.NewInvalidJournalEntryError("line", "each line must have either debit or credit greater than zero")
		}
	}

	return nil
}

// CreateJournalEntry validates the candidate, stores any uploaded documents
// and persists the aggregate atomically. Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	req.Normalize()

	entryDate, err := req.ParsedEntryDate()
	if err != nil {
		return nil, apperrors.NewInvalidJournalEntryError("entryDate", "must be a valid date in YYYY-MM-DD format")
	}

	bookType, err := domain.ParseBookType(req.BookType)
	if err != nil {
		return nil, apperrors.NewInvalidJournalEntryError("bookType", err.Error())
	}

	entry := domain.JournalEntry{
		EntryDate:   entryDate,
		BookType:    bookType,
		Description: req.Description,
		Reference:   req.Reference,
		Status:      domain.EntryActive,
		Lines:       make([]domain.JournalEntryLine, len(req.Lines)),
	}
	for i, lineReq := range req.Lines {
		lineDescription := lineReq.Description
		if lineDescription == "" {
			lineDescription = req.Description
		}
		entry.Lines[i] = domain.JournalEntryLine{
			AccountID:   lineReq.AccountID,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineDescription,
		}
	}

	// Business validation runs before documents are stored and before any
	// transaction is opened.
	if err := s.validateJournalEntry(&entry); err != nil {
		logger.Warn("Journal entry failed validation", slog.String("error", err.Error()))
		return nil, err
	}

	var storedDocs []domain.JournalEntryDocument
	for i, lineReq := range req.Lines {
		if len(lineReq.Documents) == 0 {
			continue
		}
		documents := make([]domain.JournalEntryDocument, len(lineReq.Documents))
		for j, docReq := range lineReq.Documents {
			doc, err := s.docStore.StoreDocument(ctx, docReq)
			if err != nil {
				logger.Warn("Failed to store line document", slog.Int("line", i), slog.String("filename", docReq.Filename), slog.String("error", err.Error()))
				s.removeStoredDocuments(ctx, storedDocs)
				return nil, fmt.Errorf("failed to store document %q: %w", docReq.Filename, err)
			}
			documents[j] = doc
			storedDocs = append(storedDocs, doc)
		}
		entry.Lines[i].Documents = documents
	}

	saved, err := s.entryRepo.CreateJournalEntry(ctx, entry)
	if err != nil {
		logger.Error("Failed to persist journal entry", slog.String("error", err.Error()), slog.String("book_type", string(bookType)))
		s.removeStoredDocuments(ctx, storedDocs)
		return nil, err
	}

	logger.Info("Journal entry created",
		slog.Int64("entry_id", saved.ID),
		slog.Int("operation_number", saved.OperationNumber),
		slog.Int("book_correlative", saved.BookCorrelative),
		slog.String("book_type", string(saved.BookType)),
	)
	return saved, nil
}

// removeStoredDocuments deletes files written ahead of a persistence attempt
// that did not commit, so nothing is left orphaned on disk.
func (s *journalEntryService) removeStoredDocuments(ctx context.Context, docs []domain.JournalEntryDocument) {
	logger := middleware.GetLoggerFromCtx(ctx)
	for _, doc := range docs {
		if err := s.docStore.RemoveDocument(ctx, doc); err != nil {
			logger.Error("Failed to remove orphaned document", slog.String("stored_filename", doc.StoredFilename), slog.String("error", err.Error()))
		}
	}
}

// GetJournalEntryByID retrieves a full aggregate by id.
// Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) GetJournalEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal entry by ID", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return entry, nil
}

// ListJournalEntries retrieves a page of entries matching the filter.
// Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.PagedJournalEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	params.ApplyDefaults()

	entries, total, err := s.entryRepo.ListJournalEntries(ctx, params)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve journal entries: %w", err)
	}

	totalPages := int((total + int64(params.Size) - 1) / int64(params.Size))
	resp := &dto.PagedJournalEntriesResponse{
		Items:         dto.ToJournalEntryResponses(entries),
		Page:          params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}

	logger.Debug("Journal entries listed", slog.Int("count", len(entries)), slog.Int64("total", total))
	return resp, nil
}

// VoidJournalEntry marks an entry VOID. The repository side is deferred, so
// this surfaces apperrors.ErrNotImplemented after the existence check.
// Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) VoidJournalEntry(ctx context.Context, entryID int64) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.IsVoided() {
		logger.Warn("Journal entry is already voided", slog.Int64("entry_id", entryID))
	}
	return s.entryRepo.VoidJournalEntry(ctx, entryID)
}

// SoftDeleteJournalEntry is deferred. Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) SoftDeleteJournalEntry(ctx context.Context, entryID int64) error {
	if _, err := s.entryRepo.FindJournalEntryByID(ctx, entryID); err != nil {
		return err
	}
	return s.entryRepo.SoftDeleteJournalEntry(ctx, entryID)
}

// RestoreJournalEntry is deferred. Implements portssvc.JournalEntrySvcFacade.
func (s *journalEntryService) RestoreJournalEntry(ctx context.Context, entryID int64) error {
	return s.entryRepo.RestoreJournalEntry(ctx, entryID)
}
