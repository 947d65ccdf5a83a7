// Package ledger holds the use cases behind the ledger screens: entry forms,
// the dashboard summary, recent activity and receipt attachments.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransactionService records and edits ledger transactions
type TransactionService struct {
	repo    ledger.TransactionRepository
	events  shared.EventPublisher
	metrics Metrics
	logger  *zap.Logger
}

// NewTransactionService creates a TransactionService
func NewTransactionService(
	repo ledger.TransactionRepository,
	events shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *TransactionService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &TransactionService{repo: repo, events: events, metrics: metrics, logger: logger}
}

// CreateInvoice records revenue billed to a customer
func (s *TransactionService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, tenantID, ledger.TransactionTypeInvoice, func(number string) (*ledger.Transaction, error) {
		return ledger.NewInvoice(tenantID, number, req.details())
	})
}

// CreateIncome records money received outside an invoice
func (s *TransactionService) CreateIncome(ctx context.Context, tenantID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, tenantID, ledger.TransactionTypeIncome, func(number string) (*ledger.Transaction, error) {
		return ledger.NewIncome(tenantID, number, req.details())
	})
}

// CreatePurchase records goods or services bought
func (s *TransactionService) CreatePurchase(ctx context.Context, tenantID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, tenantID, ledger.TransactionTypePurchase, func(number string) (*ledger.Transaction, error) {
		return ledger.NewPurchase(tenantID, number, req.details())
	})
}

// CreateExpense records an operating expense
func (s *TransactionService) CreateExpense(ctx context.Context, tenantID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	return s.create(ctx, tenantID, ledger.TransactionTypeExpense, func(number string) (*ledger.Transaction, error) {
		return ledger.NewExpense(tenantID, number, req.details())
	})
}

// CreateTransfer moves money between cash and bank
func (s *TransactionService) CreateTransfer(ctx context.Context, tenantID uuid.UUID, req TransferRequest) (*TransactionResponse, error) {
	return s.create(ctx, tenantID, ledger.TransactionTypeTransfer, func(number string) (*ledger.Transaction, error) {
		return ledger.NewTransfer(tenantID, number, ledger.PaymentMethod(req.From), req.Amount, req.Date, req.Description)
	})
}

// RecordCollection books a Paid Income for money collected against a
// contact receivable, so cash or bank reflects it
func (s *TransactionService) RecordCollection(ctx context.Context, tenantID, contactID uuid.UUID, contactName string, amount decimal.Decimal, method ledger.PaymentMethod, description string) (*TransactionResponse, error) {
	resp, err := s.CreateIncome(ctx, tenantID, TransactionRequest{
		Amount:        amount,
		Date:          time.Now(),
		Status:        string(ledger.TransactionStatusPaid),
		PaymentMethod: string(method),
		ContactID:     &contactID,
		ContactName:   contactName,
		Description:   description,
		Category:      "Receivable collection",
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCollection(ctx, string(method))
	return resp, nil
}

func (s *TransactionService) create(
	ctx context.Context,
	tenantID uuid.UUID,
	txType ledger.TransactionType,
	build func(number string) (*ledger.Transaction, error),
) (resp *TransactionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create",
		telemetry.AttrTransactionType.String(string(txType)))
	defer func() { telemetry.EndSpan(span, err) }()

	number, err := s.repo.GenerateNumber(ctx, tenantID, txType)
	if err != nil {
		return nil, err
	}
	tx, err := build(number)
	if err != nil {
		return nil, err
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		tx.SetCreatedBy(actor)
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("transaction.number", tx.InvoiceNumber))
	s.metrics.RecordTransaction(ctx, string(tx.Type), string(tx.PaymentMethod))
	publishEvents(ctx, s.events, s.logger, tx)

	r := ToTransactionResponse(tx)
	return &r, nil
}

// GetByID returns one transaction
func (s *TransactionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	r := ToTransactionResponse(tx)
	return &r, nil
}

// List returns a page of transactions and the unpaged total
func (s *TransactionService) List(ctx context.Context, tenantID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := ledger.TransactionFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.SortBy,
			OrderDir: "asc",
			Search:   filter.Search,
		},
		ContactID: filter.ContactID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	if filter.SortBy == "" || filter.SortDesc {
		domainFilter.OrderDir = "desc"
	}
	if filter.Type != "" {
		t := ledger.TransactionType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_TYPE", "Unknown transaction type "+filter.Type)
		}
		domainFilter.Type = &t
	}
	if filter.Status != "" {
		st := ledger.TransactionStatus(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown transaction status "+filter.Status)
		}
		domainFilter.Status = &st
	}
	if filter.PaymentMethod != "" {
		m := ledger.PaymentMethod(filter.PaymentMethod)
		if !m.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be Cash or Online")
		}
		domainFilter.PaymentMethod = &m
	}

	txs, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out, total, nil
}

// Update replaces the editable fields. A non-zero expectedVersion must
// match the stored version.
func (s *TransactionService) Update(ctx context.Context, tenantID, id uuid.UUID, req TransactionRequest, expectedVersion int) (*TransactionResponse, error) {
	return s.mutate(ctx, tenantID, id, expectedVersion, func(tx *ledger.Transaction) error {
		d := req.details()
		if req.Status == "" {
			d.Status = tx.Status
		}
		if req.PaymentMethod == "" {
			d.PaymentMethod = tx.PaymentMethod
		}
		return tx.Update(d)
	})
}

// MarkPaid settles a pending or overdue transaction. An empty method keeps
// the recorded one.
func (s *TransactionService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID, method string) (*TransactionResponse, error) {
	return s.mutate(ctx, tenantID, id, 0, func(tx *ledger.Transaction) error {
		return tx.MarkPaid(ledger.PaymentMethod(method))
	})
}

// MarkOverdue flags a pending transaction
func (s *TransactionService) MarkOverdue(ctx context.Context, tenantID, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, tenantID, id, 0, func(tx *ledger.Transaction) error {
		return tx.MarkOverdue()
	})
}

func (s *TransactionService) mutate(ctx context.Context, tenantID, id uuid.UUID, expectedVersion int, change func(*ledger.Transaction) error) (*TransactionResponse, error) {
	tx, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && expectedVersion != tx.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	if err := change(tx); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, tx); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, s.logger, tx)
	r := ToTransactionResponse(tx)
	return &r, nil
}

// Delete removes a transaction for good. Its receipt, if any, is left for
// the attachment service to clean up.
func (s *TransactionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	tx.MarkDeleted()
	if err := s.repo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	publishEvents(ctx, s.events, s.logger, tx)
	return nil
}

func (s *TransactionService) find(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	return findTransaction(ctx, s.repo, tenantID, id)
}

// ErrTransactionNotFound is returned for unknown or foreign transaction IDs
var ErrTransactionNotFound = shared.NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")

func findTransaction(ctx context.Context, repo ledger.TransactionRepository, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	tx, err := repo.FindByIDForTenant(ctx, tenantID, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}
