// Package crm manages contacts and the receivables opened against their
// accepted quotations.
package crm

import (
	"context"
	"errors"
	"fmt"

	ledgerapp "github.com/agency/backoffice/internal/application/ledger"
	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrContactNotFound is returned for unknown or foreign contact IDs
var ErrContactNotFound = shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")

// CollectionRecorder books the Income row for a receivable payment
type CollectionRecorder interface {
	RecordCollection(ctx context.Context, tenantID, contactID uuid.UUID, contactName string, amount decimal.Decimal, method ledger.PaymentMethod, description string) (*ledgerapp.TransactionResponse, error)
}

// ContactService handles contacts and their receivables
type ContactService struct {
	repo        crm.ContactRepository
	collections CollectionRecorder
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewContactService creates a ContactService
func NewContactService(repo crm.ContactRepository, collections CollectionRecorder, events shared.EventPublisher, logger *zap.Logger) *ContactService {
	return &ContactService{repo: repo, collections: collections, events: events, logger: logger}
}

// Create adds a contact
func (s *ContactService) Create(ctx context.Context, tenantID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := crm.NewContact(tenantID, req.details())
	if err != nil {
		return nil, err
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		c.SetCreatedBy(actor)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	s.logger.Info("Contact created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contact_id", c.ID.String()),
		zap.String("type", string(c.Type)))

	resp := ToContactResponse(c)
	return &resp, nil
}

// GetByID returns one contact with its receivables
func (s *ContactService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ContactResponse, error) {
	c, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// List returns a page of contacts and the unpaged total
func (s *ContactService) List(ctx context.Context, tenantID uuid.UUID, filter ContactListFilter) ([]ContactResponse, int64, error) {
	domainFilter := crm.ContactFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.SortBy,
			OrderDir: "asc",
			Search:   filter.Search,
		},
		WithReceivable: filter.WithReceivable,
	}
	if filter.SortBy == "" {
		domainFilter.OrderBy = "name"
	}
	if filter.SortDesc {
		domainFilter.OrderDir = "desc"
	}
	if filter.Type != "" {
		t := crm.ContactType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_TYPE", "Unknown contact type "+filter.Type)
		}
		domainFilter.Type = &t
	}

	contacts, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ContactResponse, len(contacts))
	for i := range contacts {
		out[i] = ToContactResponse(&contacts[i])
	}
	return out, total, nil
}

// Update replaces the profile fields. A non-zero expectedVersion must
// match the stored version.
func (s *ContactService) Update(ctx context.Context, tenantID, id uuid.UUID, req ContactRequest, expectedVersion int) (*ContactResponse, error) {
	return s.mutate(ctx, tenantID, id, expectedVersion, func(c *crm.Contact) error {
		return c.Update(req.details())
	})
}

// Delete removes a contact and its receivables. Transactions that name
// the contact keep their copy of the name.
func (s *ContactService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	c, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	c.MarkDeleted()
	if err := s.repo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.publish(ctx, c)
	return nil
}

// AddReceivable opens a receivable for an accepted quotation
func (s *ContactService) AddReceivable(ctx context.Context, tenantID, contactID uuid.UUID, req ReceivableRequest) (*ReceivableResponse, error) {
	var entry ledger.ReceivableEntry
	_, err := s.mutate(ctx, tenantID, contactID, 0, func(c *crm.Contact) error {
		e, err := c.AddReceivable(req.QuotationRef, req.TotalAmount, req.DueDate)
		if err != nil {
			return err
		}
		entry = *e
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(entry)
	return &resp, nil
}

// MarkReceivableOverdue flags an entry as overdue
func (s *ContactService) MarkReceivableOverdue(ctx context.Context, tenantID, contactID uuid.UUID, entryID string) (*ContactResponse, error) {
	return s.mutate(ctx, tenantID, contactID, 0, func(c *crm.Contact) error {
		return c.MarkReceivableOverdue(entryID)
	})
}

// RemoveReceivable deletes an entry, e.g. when a quotation is withdrawn
func (s *ContactService) RemoveReceivable(ctx context.Context, tenantID, contactID uuid.UUID, entryID string) (*ContactResponse, error) {
	return s.mutate(ctx, tenantID, contactID, 0, func(c *crm.Contact) error {
		return c.RemoveReceivable(entryID)
	})
}

// RecordReceivablePayment applies a payment to an entry and books a Paid
// Income through the chosen method so cash or bank reflects it. The
// contact is saved first; if booking the Income fails the error names the
// entry so the collection can be re-entered by hand.
func (s *ContactService) RecordReceivablePayment(ctx context.Context, tenantID, contactID uuid.UUID, entryID string, req PaymentRequest) (*PaymentResponse, error) {
	method := ledger.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = ledger.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be Cash or Online")
	}

	var (
		entry ledger.ReceivableEntry
		name  string
	)
	_, err := s.mutate(ctx, tenantID, contactID, 0, func(c *crm.Contact) error {
		e, err := c.ApplyReceivablePayment(entryID, req.Amount)
		if err != nil {
			return err
		}
		entry = *e
		name = c.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Payment for quotation " + entry.QuotationRef
	}
	tx, err := s.collections.RecordCollection(ctx, tenantID, contactID, name, req.Amount, method, description)
	if err != nil {
		s.logger.Error("Receivable payment applied but income was not recorded",
			zap.String("tenant_id", tenantID.String()),
			zap.String("contact_id", contactID.String()),
			zap.String("receivable_id", entryID),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("payment applied to receivable %s but income was not recorded: %w", entryID, err)
	}

	return &PaymentResponse{
		Receivable:    ToReceivableResponse(entry),
		TransactionID: tx.ID,
		InvoiceNumber: tx.InvoiceNumber,
	}, nil
}

func (s *ContactService) mutate(ctx context.Context, tenantID, id uuid.UUID, expectedVersion int, change func(*crm.Contact) error) (*ContactResponse, error) {
	c, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion > 0 && expectedVersion != c.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	if err := change(c); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)
	resp := ToContactResponse(c)
	return &resp, nil
}

func (s *ContactService) find(ctx context.Context, tenantID, id uuid.UUID) (*crm.Contact, error) {
	c, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrContactNotFound
	}
	return c, err
}

func (s *ContactService) publish(ctx context.Context, c *crm.Contact) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish contact events", zap.Int("count", len(events)), zap.Error(err))
	}
}
