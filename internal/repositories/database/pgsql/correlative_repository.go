package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
	portsrepo "github.com/read424/walrex-contable-sub001/internal/core/ports/repositories"
)

const (
	counterTypeBook      = "BOOK"
	counterTypeOperation = "OPERATION"

	// operationBookScope fills the book_type column for the year-wide operation
	// counter, which is not scoped to any book.
	operationBookScope = "*"
)

// nextCorrelativeQuery claims the next value for a counter row. The upsert
// takes a row lock, so concurrent transactions on the same scope serialize on
// exactly this increment and never observe the same value. Because it runs in
// the caller's transaction, a rollback releases the value as a gap, never a
// duplicate.
const nextCorrelativeQuery = `
	INSERT INTO journal_correlatives (counter_type, book_type, fiscal_year, current_value)
	VALUES ($1, $2, $3, 1)
	ON CONFLICT (counter_type, book_type, fiscal_year)
	DO UPDATE SET current_value = journal_correlatives.current_value + 1
	RETURNING current_value;
`

// PgxCorrelativeRepository allocates monotonic correlative numbers from
// per-scope counter rows.
type PgxCorrelativeRepository struct {
	BaseRepository
}

// NewCorrelativeRepository creates a new correlative allocator.
func NewCorrelativeRepository(pool PgxPool) portsrepo.CorrelativeAllocator {
	return &PgxCorrelativeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CorrelativeAllocator = (*PgxCorrelativeRepository)(nil)

// NextBookCorrelative allocates the next number scoped to (bookType, year)
// inside the given transaction.
func (r *PgxCorrelativeRepository) NextBookCorrelative(ctx context.Context, tx pgx.Tx, bookType domain.BookType, year int) (int, error) {
	var next int
	err := tx.QueryRow(ctx, nextCorrelativeQuery, counterTypeBook, string(bookType), year).Scan(&next)
	if err != nil {
		return 0, apperrors.NewAppError(500, fmt.Sprintf("failed to allocate book correlative for %s/%d", bookType, year), err)
	}
	return next, nil
}

// NextOperationNumber allocates the next year-wide operation number inside the
// given transaction.
func (r *PgxCorrelativeRepository) NextOperationNumber(ctx context.Context, tx pgx.Tx, year int) (int, error) {
	var next int
	err := tx.QueryRow(ctx, nextCorrelativeQuery, counterTypeOperation, operationBookScope, year).Scan(&next)
	if err != nil {
		return 0, apperrors.NewAppError(500, fmt.Sprintf("failed to allocate operation number for year %d", year), err)
	}
	return next, nil
}
