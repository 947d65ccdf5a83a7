package ledger

import (
	"context"
	"time"

	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryService derives the dashboard figures and the recent-activity
// view. Nothing is cached: every call reads the tenant's full history.
type SummaryService struct {
	transactions ledger.TransactionRepository
	contacts     crm.ContactRepository
	metrics      Metrics
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewSummaryService creates a SummaryService. loc decides the calendar
// day used for overdue checks.
func NewSummaryService(
	transactions ledger.TransactionRepository,
	contacts crm.ContactRepository,
	metrics Metrics,
	loc *time.Location,
	logger *zap.Logger,
) *SummaryService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryService{
		transactions: transactions,
		contacts:     contacts,
		metrics:      metrics,
		location:     loc,
		now:          time.Now,
		logger:       logger,
	}
}

// Summary computes revenue, expenses, balances and receivables as of now
func (s *SummaryService) Summary(ctx context.Context, tenantID uuid.UUID) (resp *SummaryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_summary", "summary",
		telemetry.AttrTenantID.String(tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	started := time.Now()
	txs, contacts, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	var summary ledger.Summary
	telemetry.WithProfilingLabels(ctx, profilingLabels("summary", tenantID), func(context.Context) {
		summary = ledger.Summarize(txs, contacts, now)
	})

	s.metrics.RecordComputation(ctx, tenantID, "summary", time.Since(started))
	if n := len(summary.PossibleDuplicates); n > 0 {
		s.metrics.RecordDuplicates(ctx, n)
		s.logger.Debug("Possible duplicate receivables in summary",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", n))
	}

	return &SummaryResponse{Summary: summary, AsOf: now}, nil
}

// RecentActivity returns the newest ledger rows merged with receivable
// Due rows, filtered by q
func (s *SummaryService) RecentActivity(ctx context.Context, tenantID uuid.UUID, q ActivityQuery) (out []ActivityEntryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_summary", "recent_activity",
		telemetry.AttrTenantID.String(tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	started := time.Now()
	txs, contacts, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var entries []ledger.Entry
	telemetry.WithProfilingLabels(ctx, profilingLabels("recent_activity", tenantID), func(context.Context) {
		entries = ledger.RecentActivity(txs, contacts, ledger.ActivityFilter{
			Type:      q.Type,
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
			Search:    q.Search,
		})
	})
	s.metrics.RecordComputation(ctx, tenantID, "recent_activity", time.Since(started))

	out = make([]ActivityEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToActivityEntryResponse(e)
	}
	return out, nil
}

// DuplicateReceivables lists pending Income rows that look like the same
// debt as a contact receivable
func (s *SummaryService) DuplicateReceivables(ctx context.Context, tenantID uuid.UUID) (dups []ledger.DuplicateReceivable, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_summary", "duplicate_receivables",
		telemetry.AttrTenantID.String(tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	txs, contacts, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ledger.DetectDuplicateReceivables(txs, contacts), nil
}

func (s *SummaryService) load(ctx context.Context, tenantID uuid.UUID) ([]ledger.Transaction, []ledger.ContactLedger, error) {
	txs, err := s.transactions.ListAllForTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to load transactions", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return nil, nil, err
	}
	contacts, err := s.contacts.ListWithReceivables(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to load contact receivables", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return nil, nil, err
	}
	return txs, crm.LedgerViews(contacts), nil
}

func profilingLabels(operation string, tenantID uuid.UUID) map[string]string {
	return map[string]string{
		telemetry.ProfilingLabelOperation: operation,
		telemetry.ProfilingLabelTenantID:  tenantID.String(),
	}
}
