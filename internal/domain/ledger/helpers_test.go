package ledger

import (
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

func newTestRoot() shared.TenantAggregateRoot {
	return shared.NewTenantAggregateRoot(uuid.New())
}

// testReceivable builds a valid entry; total is remaining + paid
func testReceivable(ref, remaining, paid string, status ReceivableStatus) ReceivableEntry {
	r := dec(remaining)
	p := dec(paid)
	return ReceivableEntry{
		ID:              uuid.NewString(),
		QuotationRef:    ref,
		TotalAmount:     r.Add(p),
		PaidAmount:      p,
		RemainingAmount: r,
		Status:          status,
		CreatedAt:       testNow.AddDate(0, 0, -2),
	}
}

func datePtr(t time.Time) *time.Time {
	return &t
}
