package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records how often the dashboard figures are computed and
// what gets written to the ledger
type LedgerMetrics struct {
	computations *Counter
	duration     *Histogram
	transactions *Counter
	duplicates   *Counter
	collections  *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	var (
		m   LedgerMetrics
		err error
	)
	if m.computations, err = NewCounter(meter, "ledger_computations_total",
		"Number of summary, activity and duplicate computations", "{computation}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "ledger_computation_duration_seconds",
		"Time spent computing ledger read models", "s", SmallDurationBuckets...); err != nil {
		return nil, err
	}
	if m.transactions, err = NewCounter(meter, "ledger_transactions_recorded_total",
		"Transactions recorded by type and payment method", "{transaction}"); err != nil {
		return nil, err
	}
	if m.duplicates, err = NewCounter(meter, "ledger_duplicate_receivables_total",
		"Possible double-counted receivables found", "{pair}"); err != nil {
		return nil, err
	}
	if m.collections, err = NewCounter(meter, "ledger_receivable_collections_total",
		"Payments applied to accounts receivable entries", "{payment}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordComputation counts one read-model computation and its latency
func (m *LedgerMetrics) RecordComputation(ctx context.Context, tenantID uuid.UUID, operation string, d time.Duration) {
	m.computations.Inc(ctx, AttrOperation.String(operation), AttrTenantID.String(tenantID.String()))
	m.duration.RecordDuration(ctx, d, AttrOperation.String(operation))
}

// RecordTransaction counts a newly recorded transaction
func (m *LedgerMetrics) RecordTransaction(ctx context.Context, txType, method string) {
	m.transactions.Inc(ctx, AttrTransactionType.String(txType), AttrPaymentMethod.String(method))
}

// RecordDuplicates counts possible duplicate pairs reported to a user
func (m *LedgerMetrics) RecordDuplicates(ctx context.Context, n int) {
	if n > 0 {
		m.duplicates.Add(ctx, int64(n))
	}
}

// RecordCollection counts a receivable payment
func (m *LedgerMetrics) RecordCollection(ctx context.Context, method string) {
	m.collections.Inc(ctx, AttrPaymentMethod.String(method))
}
