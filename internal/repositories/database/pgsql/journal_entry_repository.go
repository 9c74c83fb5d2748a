package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	portsrepo "github.com/read424/walrex-contable-sub001/internal/core/ports/repositories"
	"github.com/read424/walrex-contable-sub001/internal/dto"
	"github.com/read424/walrex-contable-sub001/internal/middleware"
	"github.com/read424/walrex-contable-sub001/internal/models"
	"github.com/read424/walrex-contable-sub001/internal/utils/mapping"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

// maxCorrelativeRetries bounds the automatic retries of the full
// allocate+insert transaction when a correlative uniqueness conflict is
// detected under contention.
const maxCorrelativeRetries = 3

// PgxJournalEntryRepository persists journal-entry aggregates. A single pgx
// transaction covers correlative allocation and the parent/line/document
// inserts, so a failure at any point leaves no partial entry behind.
type PgxJournalEntryRepository struct {
	BaseRepository
	correlatives portsrepo.CorrelativeAllocator
}

// NewJournalEntryRepository creates a new repository for journal-entry data.
func NewJournalEntryRepository(pool PgxPool, correlatives portsrepo.CorrelativeAllocator) portsrepo.JournalEntryRepositoryFacade {
	return &PgxJournalEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		correlatives:   correlatives,
	}
}

var _ portsrepo.JournalEntryRepositoryFacade = (*PgxJournalEntryRepository)(nil)

// CreateJournalEntry persists the aggregate, retrying the whole
// allocate+insert sequence a bounded number of times on correlative
// uniqueness conflicts. Non-transient failures are never retried.
func (r *PgxJournalEntryRepository) CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxCorrelativeRetries; attempt++ {
		saved, err := r.createJournalEntryOnce(ctx, entry)
		if err == nil {
			return saved, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
		logger.Warn("Correlative conflict on journal entry insert, retrying",
			slog.Int("attempt", attempt),
			slog.String("book_type", string(entry.BookType)),
			slog.String("error", err.Error()),
		)
	}
	return nil, apperrors.NewAppError(500, "journal entry insert kept conflicting on correlatives", lastErr)
}

// createJournalEntryOnce runs one allocate+insert transaction. Parent row
// first, then lines in input order, then documents, matching the foreign-key
// dependencies.
func (r *PgxJournalEntryRepository) createJournalEntryOnce(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// Ignored after a successful commit.
	defer r.Rollback(ctx, tx)

	year := entry.FiscalYear()

	// Allocate both correlatives inside this transaction: if it aborts, the
	// claimed numbers never appear on a committed row.
	operationNumber, err := r.correlatives.NextOperationNumber(ctx, tx, year)
	if err != nil {
		return nil, err
	}
	bookCorrelative, err := r.correlatives.NextBookCorrelative(ctx, tx, entry.BookType, year)
	if err != nil {
		return nil, err
	}
	entry.OperationNumber = operationNumber
	entry.BookCorrelative = bookCorrelative

	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	modelEntry := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (
			entry_date, book_type, description, reference,
			operation_number, book_correlative, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
	`
	err = tx.QueryRow(ctx, entryQuery,
		modelEntry.EntryDate,
		modelEntry.BookType,
		modelEntry.Description,
		modelEntry.Reference,
		modelEntry.OperationNumber,
		modelEntry.BookCorrelative,
		modelEntry.Status,
		modelEntry.CreatedAt,
		modelEntry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, wrapInsertError("failed to insert journal entry", err)
	}

	// Lines go in one at a time: each generated id is needed to link the
	// line's documents, and line_order preserves the input order.
	lineQuery := `
		INSERT INTO journal_entry_lines (journal_entry_id, account_id, debit, credit, description, line_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	for i := range entry.Lines {
		line := &entry.Lines[i]
		line.JournalEntryID = entry.ID
		err = tx.QueryRow(ctx, lineQuery,
			entry.ID,
			line.AccountID,
			line.Debit,
			line.Credit,
			line.Description,
			i,
		).Scan(&line.ID)
		if err != nil {
			return nil, wrapInsertError(fmt.Sprintf("failed to insert journal entry line %d", i), err)
		}
	}

	// Documents only need their parent line id, so they batch.
	docQuery := `
		INSERT INTO journal_entry_documents (
			journal_entry_line_id, original_filename, stored_filename,
			file_path, mime_type, file_size_bytes, uploaded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	batch := &pgx.Batch{}
	type docRef struct{ line, doc int }
	var refs []docRef
	for i := range entry.Lines {
		line := &entry.Lines[i]
		for j := range line.Documents {
			doc := &line.Documents[j]
			doc.JournalEntryLineID = line.ID
			batch.Queue(docQuery,
				line.ID,
				doc.OriginalFilename,
				doc.StoredFilename,
				doc.FilePath,
				doc.MimeType,
				doc.FileSizeBytes,
				doc.UploadedAt,
			)
			refs = append(refs, docRef{line: i, doc: j})
		}
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for _, ref := range refs {
			if err := br.QueryRow().Scan(&entry.Lines[ref.line].Documents[ref.doc].ID); err != nil {
				br.Close()
				return nil, wrapInsertError("failed to insert journal entry document", err)
			}
		}
		if err := br.Close(); err != nil {
			return nil, wrapInsertError("failed to finish document batch", err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// isUniqueViolation reports whether err (possibly wrapped) is a PostgreSQL
// unique constraint violation, the only failure class worth retrying.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func wrapInsertError(message string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		// Keep the pg error on the chain so the retry loop can classify it.
		return fmt.Errorf("%s: %w", message, err)
	}
	return apperrors.NewAppError(500, message, err)
}

// FindJournalEntryByID retrieves a full aggregate by id.
func (r *PgxJournalEntryRepository) FindJournalEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	entryQuery := `
		SELECT id, entry_date, book_type, description, reference,
		       operation_number, book_correlative, status, created_at, updated_at
		FROM journal_entries
		WHERE id = $1 AND deleted_at IS NULL;
	`
	var modelEntry models.JournalEntry
	err := r.Pool.QueryRow(ctx, entryQuery, entryID).Scan(
		&modelEntry.ID,
		&modelEntry.EntryDate,
		&modelEntry.BookType,
		&modelEntry.Description,
		&modelEntry.Reference,
		&modelEntry.OperationNumber,
		&modelEntry.BookCorrelative,
		&modelEntry.Status,
		&modelEntry.CreatedAt,
		&modelEntry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry by id "+strconv.FormatInt(entryID, 10), err)
	}

	entry := mapping.ToDomainJournalEntry(modelEntry)

	lines, lineIDs, err := r.findLinesByEntryIDs(ctx, []int64{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entryID]

	if len(lineIDs) > 0 {
		documents, err := r.findDocumentsByLineIDs(ctx, lineIDs)
		if err != nil {
			return nil, err
		}
		for i := range entry.Lines {
			entry.Lines[i].Documents = documents[entry.Lines[i].ID]
		}
	}

	return &entry, nil
}

// findLinesByEntryIDs loads lines for the given entries grouped by entry id,
// preserving each entry's input order. It also returns all line ids.
func (r *PgxJournalEntryRepository) findLinesByEntryIDs(ctx context.Context, entryIDs []int64) (map[int64][]domain.JournalEntryLine, []int64, error) {
	query := `
		SELECT id, journal_entry_id, account_id, debit, credit, description
		FROM journal_entry_lines
		WHERE journal_entry_id = ANY($1)
		ORDER BY journal_entry_id, line_order;
	`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entry lines", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]domain.JournalEntryLine, len(entryIDs))
	var lineIDs []int64
	for rows.Next() {
		var m models.JournalEntryLine
		if err := rows.Scan(&m.ID, &m.JournalEntryID, &m.AccountID, &m.Debit, &m.Credit, &m.Description); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry line", err)
		}
		grouped[m.JournalEntryID] = append(grouped[m.JournalEntryID], mapping.ToDomainJournalEntryLine(m))
		lineIDs = append(lineIDs, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading journal entry lines", err)
	}
	return grouped, lineIDs, nil
}

// findDocumentsByLineIDs loads document metadata grouped by owning line id.
func (r *PgxJournalEntryRepository) findDocumentsByLineIDs(ctx context.Context, lineIDs []int64) (map[int64][]domain.JournalEntryDocument, error) {
	query := `
		SELECT id, journal_entry_line_id, original_filename, stored_filename,
		       file_path, mime_type, file_size_bytes, uploaded_at
		FROM journal_entry_documents
		WHERE journal_entry_line_id = ANY($1)
		ORDER BY journal_entry_line_id, id;
	`
	rows, err := r.Pool.Query(ctx, query, lineIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal entry documents", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]domain.JournalEntryDocument)
	for rows.Next() {
		var m models.JournalEntryDocument
		if err := rows.Scan(&m.ID, &m.JournalEntryLineID, &m.OriginalFilename, &m.StoredFilename,
			&m.FilePath, &m.MimeType, &m.FileSizeBytes, &m.UploadedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry document", err)
		}
		grouped[m.JournalEntryLineID] = append(grouped[m.JournalEntryLineID], mapping.ToDomainJournalEntryDocument(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading journal entry documents", err)
	}
	return grouped, nil
}

// ListJournalEntries retrieves a page of entries matching the filter plus the
// total match count. Listing reconstructs entries from a flattened projection
// and leaves document metadata out; clients fetch a single entry for that.
func (r *PgxJournalEntryRepository) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, int64, error) {
	where, args := buildListFilter(params)

	var total int64
	countQuery := "SELECT COUNT(*) FROM journal_entries " + where
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count journal entries", err)
	}
	if total == 0 {
		return []domain.JournalEntry{}, 0, nil
	}

	pageArgs := append(args, params.Size, (params.Page-1)*params.Size)
	pageQuery := fmt.Sprintf(`
		SELECT id, entry_date, book_type, description, reference,
		       operation_number, book_correlative, status, created_at, updated_at
		FROM journal_entries
		%s
		ORDER BY entry_date DESC, id DESC
		LIMIT $%d OFFSET $%d;
	`, where, len(args)+1, len(args)+2)

	rows, err := r.Pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	entryIDs := []int64{}
	indexByID := map[int64]int{}
	for rows.Next() {
		var m models.JournalEntry
		if err := rows.Scan(&m.ID, &m.EntryDate, &m.BookType, &m.Description, &m.Reference,
			&m.OperationNumber, &m.BookCorrelative, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan journal entry", err)
		}
		indexByID[m.ID] = len(entries)
		entries = append(entries, mapping.ToDomainJournalEntry(m))
		entryIDs = append(entryIDs, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed reading journal entries", err)
	}

	lines, _, err := r.findLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, 0, err
	}
	for id, entryLines := range lines {
		entries[indexByID[id]].Lines = entryLines
	}

	return entries, total, nil
}

// buildListFilter translates listing params into a WHERE clause and its args.
func buildListFilter(params dto.ListJournalEntriesParams) (string, []interface{}) {
	clauses := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if params.Year != nil {
		args = append(args, *params.Year)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM entry_date) = $%d", len(args)))
	}
	if params.Month != nil {
		args = append(args, *params.Month)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(MONTH FROM entry_date) = $%d", len(args)))
	}
	if params.BookType != nil {
		args = append(args, strings.ToUpper(strings.TrimSpace(*params.BookType)))
		clauses = append(clauses, fmt.Sprintf("book_type = $%d", len(args)))
	}
	if params.Description != nil && *params.Description != "" {
		args = append(args, "%"+*params.Description+"%")
		clauses = append(clauses, fmt.Sprintf("description ILIKE $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateJournalEntry is deferred: committed entries are immutable.
func (r *PgxJournalEntryRepository) UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrNotImplemented
}

// VoidJournalEntry is deferred.
func (r *PgxJournalEntryRepository) VoidJournalEntry(ctx context.Context, entryID int64) error {
	return apperrors.ErrNotImplemented
}

// SoftDeleteJournalEntry is deferred.
func (r *PgxJournalEntryRepository) SoftDeleteJournalEntry(ctx context.Context, entryID int64) error {
	return apperrors.ErrNotImplemented
}

// RestoreJournalEntry is deferred.
func (r *PgxJournalEntryRepository) RestoreJournalEntry(ctx context.Context, entryID int64) error {
	return apperrors.ErrNotImplemented
}
