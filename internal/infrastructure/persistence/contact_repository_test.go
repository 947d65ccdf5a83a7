package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/identity"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newContact(t *testing.T, tenantID uuid.UUID, name string, typ crm.ContactType) *crm.Contact {
	t.Helper()
	c, err := crm.NewContact(tenantID, crm.ContactDetails{Type: typ, Name: name})
	require.NoError(t, err)
	return c
}

func TestGormContactRepository_ReceivablesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newContact(t, tenantID, "Priya Nair", crm.ContactTypeStudent)
	entry, err := c.AddReceivable("QT-2024-17", decimal.NewFromInt(300), nil)
	require.NoError(t, err)
	_, err = c.ApplyReceivablePayment(entry.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
	require.NoError(t, err)
	require.Len(t, found.Receivables, 1)
	r := found.Receivables[0]
	assert.Equal(t, "QT-2024-17", r.QuotationRef)
	assert.True(t, decimal.NewFromInt(200).Equal(r.RemainingAmount))
	assert.True(t, decimal.NewFromInt(100).Equal(r.PaidAmount))
	assert.True(t, decimal.NewFromInt(200).Equal(found.OutstandingBalance()))
}

func TestGormContactRepository_ListWithReceivables(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	withDue := newContact(t, tenantID, "Priya Nair", crm.ContactTypeStudent)
	_, err := withDue.AddReceivable("QT-1", decimal.NewFromInt(300), nil)
	require.NoError(t, err)
	plain := newContact(t, tenantID, "Stationery World", crm.ContactTypeVendor)
	require.NoError(t, repo.Save(ctx, withDue))
	require.NoError(t, repo.Save(ctx, plain))

	contacts, err := repo.ListWithReceivables(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, withDue.ID, contacts[0].ID)

	vendor := crm.ContactTypeVendor
	tests := []struct {
		name     string
		filter   crm.ContactFilter
		expected []uuid.UUID
	}{
		{"all sorted by name", crm.ContactFilter{Filter: shared.Filter{OrderBy: "name", OrderDir: "asc"}}, []uuid.UUID{withDue.ID, plain.ID}},
		{"by type", crm.ContactFilter{Type: &vendor}, []uuid.UUID{plain.ID}},
		{"search", crm.ContactFilter{Filter: shared.Filter{Search: "priya"}}, []uuid.UUID{withDue.ID}},
		{"with receivable", crm.ContactFilter{WithReceivable: true}, []uuid.UUID{withDue.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAllForTenant(ctx, tenantID, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(got))
			for i := range got {
				ids[i] = got[i].ID
			}
			assert.Equal(t, tt.expected, ids)

			count, err := repo.CountForTenant(ctx, tenantID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), count)
		})
	}
}

func TestGormContactRepository_MalformedReceivablesFailLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newContact(t, tenantID, "Broken", crm.ContactTypeStudent)
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, db.Exec(`UPDATE contacts SET receivables = ? WHERE id = ?`,
		`[{"id":"x","totalAmount":"10","paidAmount":"0","remainingAmount":"5","status":"Pending"}]`, c.ID).Error)

	_, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_RECEIVABLE", ""))
}

func TestGormContactRepository_ListWithReceivablesSkipsUnreadable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContactRepository(db)
	tenantID := uuid.New()

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core))

	broken := newContact(t, tenantID, "Broken", crm.ContactTypeStudent)
	good := newContact(t, tenantID, "Priya Nair", crm.ContactTypeStudent)
	_, err := good.AddReceivable("QT-1", decimal.NewFromInt(300), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, broken))
	require.NoError(t, repo.Save(ctx, good))
	require.NoError(t, db.Exec(`UPDATE contacts SET receivables = ? WHERE id = ?`,
		`[{"id":"x","totalAmount":"10","paidAmount":"0","remainingAmount":"5","status":"Pending"}]`, broken.ID).Error)

	contacts, err := repo.ListWithReceivables(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, good.ID, contacts[0].ID)

	entries := logs.FilterMessage("Skipping contact with unreadable receivables").All()
	require.Len(t, entries, 1)
	assert.Equal(t, broken.ID.String(), entries[0].ContextMap()["contact_id"])
}

func TestGormContactRepository_SaveWithLockAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c := newContact(t, tenantID, "Priya Nair", crm.ContactTypeStudent)
	require.NoError(t, repo.SaveWithLock(ctx, c))

	stale, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
	require.NoError(t, err)

	_, err = c.AddReceivable("QT-2", decimal.NewFromInt(50), nil)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, c))

	_, err = stale.AddReceivable("QT-3", decimal.NewFromInt(70), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, c.ID))
	assert.ErrorIs(t, repo.DeleteForTenant(ctx, tenantID, c.ID), shared.ErrNotFound)
}

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	u, err := identity.NewUser(tenantID, "Accounts.Desk", "s3cret-pass", identity.RoleAccountant)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByUsername(ctx, tenantID, "ACCOUNTS.DESK")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.VerifyPassword("s3cret-pass"))
	assert.True(t, found.Active)

	exists, err := repo.ExistsByUsername(ctx, tenantID, "accounts.desk")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername(ctx, uuid.New(), "accounts.desk")
	require.NoError(t, err)
	assert.False(t, exists)

	found.RecordLoginFailure(time.Now(), 1, time.Minute)
	require.NoError(t, repo.Save(ctx, found))
	reloaded, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.FailedAttempts)
	assert.NotNil(t, reloaded.LockedUntil)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormActivityLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActivityLogRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	actor := uuid.New()
	entity := uuid.New()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	logs := []activity.Log{
		{ID: uuid.New(), TenantID: tenantID, ActorID: &actor, Action: "ledger.transaction.created", EntityType: "Transaction", EntityID: entity, Summary: "Invoice INV-1 created", OccurredAt: base},
		{ID: uuid.New(), TenantID: tenantID, Action: "ledger.transaction.deleted", EntityType: "Transaction", EntityID: entity, Summary: "Invoice INV-1 deleted", OccurredAt: base.Add(time.Hour)},
		{ID: uuid.New(), TenantID: tenantID, ActorID: &actor, Action: "crm.contact.created", EntityType: "Contact", EntityID: uuid.New(), Summary: "Contact Priya created", OccurredAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), TenantID: uuid.New(), Action: "crm.contact.created", EntityType: "Contact", EntityID: uuid.New(), OccurredAt: base},
	}
	for i := range logs {
		require.NoError(t, repo.Save(ctx, &logs[i]))
	}

	tests := []struct {
		name     string
		filter   activity.Filter
		expected []uuid.UUID
	}{
		{"newest first", activity.Filter{}, []uuid.UUID{logs[2].ID, logs[1].ID, logs[0].ID}},
		{"by entity type", activity.Filter{EntityType: "Transaction"}, []uuid.UUID{logs[1].ID, logs[0].ID}},
		{"by entity", activity.Filter{EntityID: &entity, Filter: shared.Filter{OrderDir: "asc"}}, []uuid.UUID{logs[0].ID, logs[1].ID}},
		{"by actor", activity.Filter{ActorID: &actor}, []uuid.UUID{logs[2].ID, logs[0].ID}},
		{"search summary", activity.Filter{Filter: shared.Filter{Search: "deleted"}}, []uuid.UUID{logs[1].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAllForTenant(ctx, tenantID, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(got))
			for i := range got {
				ids[i] = got[i].ID
			}
			assert.Equal(t, tt.expected, ids)

			count, err := repo.CountForTenant(ctx, tenantID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), count)
		})
	}
}
