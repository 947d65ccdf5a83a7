package ledger

import (
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeTransactionCreated       = "TransactionCreated"
	EventTypeTransactionUpdated       = "TransactionUpdated"
	EventTypeTransactionStatusChanged = "TransactionStatusChanged"
	EventTypeTransactionDeleted       = "TransactionDeleted"

	aggregateTypeTransaction = "Transaction"
)

// TransactionCreatedEvent is raised when an entry form saves a new transaction
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID         `json:"transaction_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Amount        decimal.Decimal   `json:"amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Date          time.Time         `json:"date"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(tx *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, aggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		InvoiceNumber:   tx.InvoiceNumber,
		Type:            tx.Type,
		Status:          tx.Status,
		Amount:          tx.Amount,
		PaymentMethod:   tx.PaymentMethod,
		Date:            tx.Date,
	}
}

// TransactionUpdatedEvent is raised when a transaction is edited
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(tx *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionUpdated, aggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		InvoiceNumber:   tx.InvoiceNumber,
		Amount:          tx.Amount,
	}
}

// TransactionStatusChangedEvent is raised by MarkPaid and MarkOverdue
type TransactionStatusChangedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID         `json:"transaction_id"`
	InvoiceNumber string            `json:"invoice_number"`
	NewStatus     TransactionStatus `json:"new_status"`
}

// NewTransactionStatusChangedEvent creates a new TransactionStatusChangedEvent
func NewTransactionStatusChangedEvent(tx *Transaction, status TransactionStatus) *TransactionStatusChangedEvent {
	return &TransactionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionStatusChanged, aggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		InvoiceNumber:   tx.InvoiceNumber,
		NewStatus:       status,
	}
}

// TransactionDeletedEvent is raised before a transaction row is removed
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	AttachmentKey string          `json:"attachment_key,omitempty"`
}

// NewTransactionDeletedEvent creates a new TransactionDeletedEvent
func NewTransactionDeletedEvent(tx *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDeleted, aggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		InvoiceNumber:   tx.InvoiceNumber,
		Type:            tx.Type,
		Amount:          tx.Amount,
		AttachmentKey:   tx.AttachmentKey,
	}
}
