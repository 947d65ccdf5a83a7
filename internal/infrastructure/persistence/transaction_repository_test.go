package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newExpense(t *testing.T, tenantID uuid.UUID, number, amount, description string, date time.Time) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewExpense(tenantID, number, ledger.TransactionDetails{
		Amount:        decimal.RequireFromString(amount),
		Date:          date,
		PaymentMethod: ledger.PaymentMethodCash,
		Description:   description,
		Category:      "Rent",
	})
	require.NoError(t, err)
	return tx
}

func TestGormTransactionRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	contactID := uuid.New()
	due := repoNow.AddDate(0, 0, 14)
	inv, err := ledger.NewInvoice(tenantID, "INV-202406-00001", ledger.TransactionDetails{
		Amount:        decimal.RequireFromString("1500.50"),
		Date:          repoNow,
		DueDate:       &due,
		PaymentMethod: ledger.PaymentMethodOnline,
		ContactID:     &contactID,
		CustomerName:  "Rahul Mehta",
		Description:   "IELTS coaching",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByIDForTenant(ctx, tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeInvoice, found.Type)
	assert.Equal(t, ledger.TransactionStatusPending, found.Status)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(found.Amount))
	assert.True(t, repoNow.Equal(found.Date))
	require.NotNil(t, found.DueDate)
	assert.True(t, ledger.CalendarDay(due).Equal(*found.DueDate))
	assert.Equal(t, contactID, *found.ContactID)
	assert.Equal(t, "Rahul Mehta", found.CustomerName)
	assert.Empty(t, found.GetDomainEvents())

	byNumber, err := repo.FindByNumber(ctx, tenantID, "INV-202406-00001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)

	t.Run("other tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), inv.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_FindAllWithFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	rent := newExpense(t, tenantID, "EXP-202406-00001", "200", "Office rent", repoNow.AddDate(0, 0, -5))
	tea := newExpense(t, tenantID, "EXP-202406-00002", "20", "Tea and snacks", repoNow.AddDate(0, 0, -2))
	old := newExpense(t, tenantID, "EXP-202405-00001", "300", "Office rent", repoNow.AddDate(0, -1, 0))
	other := newExpense(t, uuid.New(), "EXP-202406-00001", "999", "Office rent", repoNow)
	for _, tx := range []*ledger.Transaction{rent, tea, old, other} {
		require.NoError(t, repo.Save(ctx, tx))
	}

	expense := ledger.TransactionTypeExpense
	from := repoNow.AddDate(0, 0, -7)

	tests := []struct {
		name     string
		filter   ledger.TransactionFilter
		expected []uuid.UUID
	}{
		{
			name:     "newest first by date",
			filter:   ledger.TransactionFilter{Filter: shared.Filter{OrderBy: "date"}},
			expected: []uuid.UUID{tea.ID, rent.ID, old.ID},
		},
		{
			name:     "case-insensitive search",
			filter:   ledger.TransactionFilter{Filter: shared.Filter{Search: "RENT"}},
			expected: []uuid.UUID{rent.ID, old.ID},
		},
		{
			name:     "date range",
			filter:   ledger.TransactionFilter{FromDate: &from},
			expected: []uuid.UUID{tea.ID, rent.ID},
		},
		{
			name:     "type filter",
			filter:   ledger.TransactionFilter{Type: &expense, Filter: shared.Filter{OrderBy: "amount", OrderDir: "asc"}},
			expected: []uuid.UUID{tea.ID, rent.ID, old.ID},
		},
		{
			name:     "pagination",
			filter:   ledger.TransactionFilter{Filter: shared.Filter{Page: 2, PageSize: 2}},
			expected: []uuid.UUID{old.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := repo.FindAllForTenant(ctx, tenantID, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(txs))
			for i := range txs {
				ids[i] = txs[i].ID
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	count, err := repo.CountForTenant(ctx, tenantID, ledger.TransactionFilter{Filter: shared.Filter{Search: "rent", Page: 1, PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "count ignores pagination")

	all, err := repo.ListAllForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormTransactionRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	tx := newExpense(t, tenantID, "EXP-202406-00001", "200", "Office rent", repoNow)
	require.NoError(t, repo.SaveWithLock(ctx, tx), "new rows are inserted")

	first, err := repo.FindByIDForTenant(ctx, tenantID, tx.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, tx.ID)
	require.NoError(t, err)

	d := first.Details()
	d.Amount = decimal.NewFromInt(250)
	require.NoError(t, first.Update(d))
	require.NoError(t, repo.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	d = second.Details()
	d.Description = "stale edit"
	require.NoError(t, second.Update(d))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByIDForTenant(ctx, tenantID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, decimal.NewFromInt(250).Equal(stored.Amount))
	assert.Equal(t, "Office rent", stored.Description)
}

func TestGormTransactionRepository_DeleteForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	tx := newExpense(t, tenantID, "EXP-202406-00001", "200", "Office rent", repoNow)
	require.NoError(t, repo.Save(ctx, tx))

	assert.ErrorIs(t, repo.DeleteForTenant(ctx, uuid.New(), tx.ID), shared.ErrNotFound)
	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, tx.ID))

	_, err := repo.FindByIDForTenant(ctx, tenantID, tx.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionRepository_GenerateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	repo.now = func() time.Time { return repoNow }
	ctx := context.Background()
	tenantID := uuid.New()

	number, err := repo.GenerateNumber(ctx, tenantID, ledger.TransactionTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, "EXP-202406-00001", number)

	require.NoError(t, repo.Save(ctx, newExpense(t, tenantID, "EXP-202406-00001", "1", "a", repoNow)))
	require.NoError(t, repo.Save(ctx, newExpense(t, tenantID, "EXP-202406-00003", "1", "b", repoNow)))
	require.NoError(t, repo.Save(ctx, newExpense(t, tenantID, "EXP-202405-00009", "1", "c", repoNow)))

	number, err = repo.GenerateNumber(ctx, tenantID, ledger.TransactionTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, "EXP-202406-00004", number, "continues after the highest number this month")

	number, err = repo.GenerateNumber(ctx, tenantID, ledger.TransactionTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-202406-00001", number, "sequences are per type")

	number, err = repo.GenerateNumber(ctx, uuid.New(), ledger.TransactionTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, "EXP-202406-00001", number, "sequences are per tenant")
}

func TestGormTransactionRepository_FindByIDForTenant_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormTransactionRepository(gormDB)

	tenantID := uuid.New()
	id := uuid.New()

	t.Run("scopes by tenant", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "type", "status", "invoice_number", "amount", "date", "payment_method"}).
			AddRow(id.String(), tenantID.String(), 3, "Purchase", "Paid", "PUR-202406-00001", "80.00", repoNow, "Online")

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, id, 1).
			WillReturnRows(rows)

		tx, err := repo.FindByIDForTenant(context.Background(), tenantID, id)
		require.NoError(t, err)
		assert.Equal(t, 3, tx.Version)
		assert.Equal(t, ledger.TransactionTypePurchase, tx.Type)
		assert.True(t, decimal.NewFromInt(80).Equal(tx.Amount))
	})

	t.Run("maps missing rows to ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByIDForTenant(context.Background(), tenantID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
