package pgsql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	"github.com/read424/walrex-contable-sub001/internal/core/domain"
)

// fakeRow satisfies pgx.Row with a canned Scan.
type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeBatchResults hands out generated ids for queued document inserts.
type fakeBatchResults struct {
	tx *fakeTx
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }

func (b *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("unexpected Query") }

func (b *fakeBatchResults) QueryRow() pgx.Row {
	return fakeRow{scan: func(dest ...any) error {
		b.tx.nextID++
		*dest[0].(*int64) = b.tx.nextID
		return nil
	}}
}

func (b *fakeBatchResults) Close() error { return nil }

// fakeTx records the statements it sees, in order, and assigns incrementing
// generated ids to every RETURNING id scan.
type fakeTx struct {
	events     *[]string
	nextID     int64
	entryErr   error // returned by the journal_entries insert
	committed  bool
	rolledBack bool
}

func (t *fakeTx) record(event string) { *t.events = append(*t.events, event) }

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.record("commit")
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("unexpected CopyFrom")
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	t.record("insert document batch")
	return &fakeBatchResults{tx: t}
}

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("unexpected Prepare")
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO journal_entries"):
		t.record("insert journal_entries")
		if t.entryErr != nil {
			err := t.entryErr
			return fakeRow{scan: func(dest ...any) error { return err }}
		}
	case strings.Contains(sql, "INSERT INTO journal_entry_lines"):
		t.record("insert journal_entry_lines")
	default:
		t.record("unexpected statement")
	}
	return fakeRow{scan: func(dest ...any) error {
		t.nextID++
		*dest[0].(*int64) = t.nextID
		return nil
	}}
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

var _ pgx.Tx = (*fakeTx)(nil)

// fakePool hands out one fakeTx per Begin.
type fakePool struct {
	events    *[]string
	entryErrs []error // per-transaction journal_entries insert error
	txs       []*fakeTx
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	*p.events = append(*p.events, "begin")
	tx := &fakeTx{events: p.events}
	if len(p.entryErrs) > len(p.txs) {
		tx.entryErr = p.entryErrs[len(p.txs)]
	}
	p.txs = append(p.txs, tx)
	return tx, nil
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected pool Query")
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: func(dest ...any) error { return errors.New("unexpected pool QueryRow") }}
}

var _ PgxPool = (*fakePool)(nil)

// stubAllocator counts allocations and can fail the operation-number call a
// configured number of times.
type stubAllocator struct {
	events        *[]string
	operationErrs []error
	calls         int
}

func (a *stubAllocator) NextOperationNumber(ctx context.Context, tx pgx.Tx, year int) (int, error) {
	a.calls++
	*a.events = append(*a.events, "allocate operation_number")
	if len(a.operationErrs) >= a.calls {
		if err := a.operationErrs[a.calls-1]; err != nil {
			return 0, err
		}
	}
	return 100 + a.calls, nil
}

func (a *stubAllocator) NextBookCorrelative(ctx context.Context, tx pgx.Tx, bookType domain.BookType, year int) (int, error) {
	*a.events = append(*a.events, "allocate book_correlative")
	return 7, nil
}

func writeTestEntry() domain.JournalEntry {
	debit, _ := decimal.NewFromString("10000.00")
	return domain.JournalEntry{
		EntryDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		BookType:    domain.GeneralJournal,
		Description: "Client payment in cash",
		Status:      domain.EntryActive,
		Lines: []domain.JournalEntryLine{
			{AccountID: 101, Debit: debit, Credit: decimal.Zero},
			{AccountID: 401, Debit: decimal.Zero, Credit: debit},
		},
	}
}

func TestCreateJournalEntry_AllocatesInsideTransaction(t *testing.T) {
	events := []string{}
	pool := &fakePool{events: &events}
	allocator := &stubAllocator{events: &events}
	repo := NewJournalEntryRepository(pool, allocator)

	saved, err := repo.CreateJournalEntry(context.Background(), writeTestEntry())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"begin",
		"allocate operation_number",
		"allocate book_correlative",
		"insert journal_entries",
		"insert journal_entry_lines",
		"insert journal_entry_lines",
		"commit",
	}, events)

	assert.Equal(t, 101, saved.OperationNumber)
	assert.Equal(t, 7, saved.BookCorrelative)
	assert.Equal(t, int64(1), saved.ID)
	require.Len(t, saved.Lines, 2)
	assert.Equal(t, int64(2), saved.Lines[0].ID)
	assert.Equal(t, int64(3), saved.Lines[1].ID)
	assert.Equal(t, saved.ID, saved.Lines[0].JournalEntryID)
	assert.Equal(t, saved.ID, saved.Lines[1].JournalEntryID)
	assert.False(t, saved.CreatedAt.IsZero())

	require.Len(t, pool.txs, 1)
	assert.True(t, pool.txs[0].committed)
	assert.False(t, pool.txs[0].rolledBack)
}

func TestCreateJournalEntry_DocumentsBatchAfterLines(t *testing.T) {
	events := []string{}
	pool := &fakePool{events: &events}
	allocator := &stubAllocator{events: &events}
	repo := NewJournalEntryRepository(pool, allocator)

	entry := writeTestEntry()
	entry.Lines[0].Documents = []domain.JournalEntryDocument{
		{OriginalFilename: "invoice.pdf", StoredFilename: "abc.pdf", MimeType: "application/pdf"},
	}

	saved, err := repo.CreateJournalEntry(context.Background(), entry)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"begin",
		"allocate operation_number",
		"allocate book_correlative",
		"insert journal_entries",
		"insert journal_entry_lines",
		"insert journal_entry_lines",
		"insert document batch",
		"commit",
	}, events)

	doc := saved.Lines[0].Documents[0]
	assert.Equal(t, saved.Lines[0].ID, doc.JournalEntryLineID)
	assert.NotZero(t, doc.ID)
}

func TestCreateJournalEntry_RetriesOnUniqueViolation(t *testing.T) {
	events := []string{}
	conflict := &pgconn.PgError{Code: uniqueViolationCode}
	pool := &fakePool{events: &events}
	allocator := &stubAllocator{events: &events, operationErrs: []error{conflict, conflict, nil}}
	repo := NewJournalEntryRepository(pool, allocator)

	saved, err := repo.CreateJournalEntry(context.Background(), writeTestEntry())

	require.NoError(t, err)
	assert.Equal(t, 3, allocator.calls)
	assert.Equal(t, 103, saved.OperationNumber)

	require.Len(t, pool.txs, 3)
	assert.True(t, pool.txs[0].rolledBack)
	assert.True(t, pool.txs[1].rolledBack)
	assert.True(t, pool.txs[2].committed)
}

func TestCreateJournalEntry_RetriesOnInsertConflict(t *testing.T) {
	events := []string{}
	conflict := &pgconn.PgError{Code: uniqueViolationCode}
	pool := &fakePool{events: &events, entryErrs: []error{conflict, nil}}
	allocator := &stubAllocator{events: &events}
	repo := NewJournalEntryRepository(pool, allocator)

	saved, err := repo.CreateJournalEntry(context.Background(), writeTestEntry())

	require.NoError(t, err)
	assert.Equal(t, 2, allocator.calls)
	require.Len(t, pool.txs, 2)
	assert.True(t, pool.txs[0].rolledBack)
	assert.True(t, pool.txs[1].committed)
	assert.Equal(t, 102, saved.OperationNumber)
}

func TestCreateJournalEntry_NoRetryOnOtherErrors(t *testing.T) {
	events := []string{}
	pool := &fakePool{events: &events}
	allocator := &stubAllocator{events: &events, operationErrs: []error{errors.New("connection reset")}}
	repo := NewJournalEntryRepository(pool, allocator)

	_, err := repo.CreateJournalEntry(context.Background(), writeTestEntry())

	require.Error(t, err)
	assert.Equal(t, 1, allocator.calls)
	require.Len(t, pool.txs, 1)
	assert.True(t, pool.txs[0].rolledBack)
	assert.False(t, pool.txs[0].committed)
}

func TestCreateJournalEntry_ExhaustsRetries(t *testing.T) {
	events := []string{}
	conflict := &pgconn.PgError{Code: uniqueViolationCode}
	pool := &fakePool{events: &events}
	allocator := &stubAllocator{events: &events, operationErrs: []error{conflict, conflict, conflict}}
	repo := NewJournalEntryRepository(pool, allocator)

	_, err := repo.CreateJournalEntry(context.Background(), writeTestEntry())

	require.Error(t, err)
	assert.Equal(t, maxCorrelativeRetries, allocator.calls)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, isUniqueViolation(err))

	for _, tx := range pool.txs {
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	}
}
