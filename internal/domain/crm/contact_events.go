package crm

import (
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeContactCreated           = "ContactCreated"
	EventTypeContactUpdated           = "ContactUpdated"
	EventTypeContactDeleted           = "ContactDeleted"
	EventTypeReceivableOpened         = "ReceivableOpened"
	EventTypeReceivablePaymentApplied = "ReceivablePaymentApplied"
	EventTypeReceivableStatusChanged  = "ReceivableStatusChanged"
	EventTypeReceivableRemoved        = "ReceivableRemoved"

	aggregateTypeContact = "Contact"
)

// ContactCreatedEvent is raised when a contact is created
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	ContactID uuid.UUID   `json:"contact_id"`
	Name      string      `json:"name"`
	Type      ContactType `json:"type"`
}

// NewContactCreatedEvent creates a new ContactCreatedEvent
func NewContactCreatedEvent(c *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactCreated, aggregateTypeContact, c.ID, c.TenantID),
		ContactID:       c.ID,
		Name:            c.Name,
		Type:            c.Type,
	}
}

// ContactUpdatedEvent is raised when a contact profile is edited
type ContactUpdatedEvent struct {
	shared.BaseDomainEvent
	ContactID uuid.UUID `json:"contact_id"`
	Name      string    `json:"name"`
}

// NewContactUpdatedEvent creates a new ContactUpdatedEvent
func NewContactUpdatedEvent(c *Contact) *ContactUpdatedEvent {
	return &ContactUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactUpdated, aggregateTypeContact, c.ID, c.TenantID),
		ContactID:       c.ID,
		Name:            c.Name,
	}
}

// ContactDeletedEvent is raised before a contact is removed
type ContactDeletedEvent struct {
	shared.BaseDomainEvent
	ContactID uuid.UUID `json:"contact_id"`
	Name      string    `json:"name"`
}

// NewContactDeletedEvent creates a new ContactDeletedEvent
func NewContactDeletedEvent(c *Contact) *ContactDeletedEvent {
	return &ContactDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactDeleted, aggregateTypeContact, c.ID, c.TenantID),
		ContactID:       c.ID,
		Name:            c.Name,
	}
}

// ReceivableEvent carries the receivable a contact event is about
type ReceivableEvent struct {
	shared.BaseDomainEvent
	ContactID    uuid.UUID               `json:"contact_id"`
	ContactName  string                  `json:"contact_name"`
	ReceivableID string                  `json:"receivable_id"`
	QuotationRef string                  `json:"quotation_ref"`
	Status       ledger.ReceivableStatus `json:"status"`
	Remaining    decimal.Decimal         `json:"remaining_amount"`
	Amount       decimal.Decimal         `json:"amount,omitempty"`
}

func newReceivableEvent(eventType string, c *Contact, e ledger.ReceivableEntry, amount decimal.Decimal) *ReceivableEvent {
	return &ReceivableEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateTypeContact, c.ID, c.TenantID),
		ContactID:       c.ID,
		ContactName:     c.Name,
		ReceivableID:    e.ID,
		QuotationRef:    e.QuotationRef,
		Status:          e.Status,
		Remaining:       e.RemainingAmount,
		Amount:          amount,
	}
}

// NewReceivableOpenedEvent is raised when a quotation receivable is added
func NewReceivableOpenedEvent(c *Contact, e ledger.ReceivableEntry) *ReceivableEvent {
	return newReceivableEvent(EventTypeReceivableOpened, c, e, e.TotalAmount)
}

// NewReceivablePaymentAppliedEvent is raised when money is collected
func NewReceivablePaymentAppliedEvent(c *Contact, e ledger.ReceivableEntry, amount decimal.Decimal) *ReceivableEvent {
	return newReceivableEvent(EventTypeReceivablePaymentApplied, c, e, amount)
}

// NewReceivableStatusChangedEvent is raised when an entry becomes overdue
func NewReceivableStatusChangedEvent(c *Contact, e ledger.ReceivableEntry) *ReceivableEvent {
	return newReceivableEvent(EventTypeReceivableStatusChanged, c, e, decimal.Zero)
}

// NewReceivableRemovedEvent is raised when an entry is deleted
func NewReceivableRemovedEvent(c *Contact, e ledger.ReceivableEntry) *ReceivableEvent {
	return newReceivableEvent(EventTypeReceivableRemoved, c, e, e.RemainingAmount)
}
