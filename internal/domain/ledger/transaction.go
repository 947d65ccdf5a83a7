package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength = 500
	maxNameLength        = 200
)

// TransactionDetails holds the editable fields shared by every entry form
type TransactionDetails struct {
	Amount        decimal.Decimal
	Date          time.Time
	DueDate       *time.Time
	Status        TransactionStatus
	PaymentMethod PaymentMethod
	ContactID     *uuid.UUID
	ContactName   string
	CustomerName  string
	Description   string
	Category      string
}

// Transaction is one recorded money movement
type Transaction struct {
	shared.TenantAggregateRoot
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	InvoiceNumber string            `json:"invoice_number"`
	Amount        decimal.Decimal   `json:"amount"`
	Date          time.Time         `json:"date"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	ContactID     *uuid.UUID        `json:"contact_id,omitempty"`
	ContactName   string            `json:"contact"`
	CustomerName  string            `json:"customer_name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	AttachmentKey string            `json:"attachment_key,omitempty"`
}

// NewInvoice records revenue billed to a customer. Invoices default to Pending.
func NewInvoice(tenantID uuid.UUID, number string, d TransactionDetails) (*Transaction, error) {
	if d.Status == "" {
		d.Status = TransactionStatusPending
	}
	if strings.TrimSpace(d.CustomerName) == "" && strings.TrimSpace(d.ContactName) == "" && d.ContactID == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoice requires a customer")
	}
	return newTransaction(tenantID, TransactionTypeInvoice, number, d)
}

// NewIncome records money received. Income defaults to Paid.
func NewIncome(tenantID uuid.UUID, number string, d TransactionDetails) (*Transaction, error) {
	if d.Status == "" {
		d.Status = TransactionStatusPaid
	}
	return newTransaction(tenantID, TransactionTypeIncome, number, d)
}

// NewPurchase records goods or services bought from a vendor
func NewPurchase(tenantID uuid.UUID, number string, d TransactionDetails) (*Transaction, error) {
	if d.Status == "" {
		d.Status = TransactionStatusPaid
	}
	return newTransaction(tenantID, TransactionTypePurchase, number, d)
}

// NewExpense records an operating expense such as rent or salaries
func NewExpense(tenantID uuid.UUID, number string, d TransactionDetails) (*Transaction, error) {
	if d.Status == "" {
		d.Status = TransactionStatusPaid
	}
	return newTransaction(tenantID, TransactionTypeExpense, number, d)
}

// NewTransfer moves money between the two buckets. from is the bucket the
// money leaves and becomes the transfer's payment method.
func NewTransfer(tenantID uuid.UUID, number string, from PaymentMethod, amount decimal.Decimal, date time.Time, description string) (*Transaction, error) {
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", from, from.Counterpart())
	}
	return newTransaction(tenantID, TransactionTypeTransfer, number, TransactionDetails{
		Amount:        amount,
		Date:          date,
		Status:        TransactionStatusPaid,
		PaymentMethod: from,
		Description:   description,
	})
}

func newTransaction(tenantID uuid.UUID, txType TransactionType, number string, d TransactionDetails) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown transaction type %q", txType))
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if err := validateDetails(d); err != nil {
		return nil, err
	}

	tx := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                txType,
		InvoiceNumber:       number,
	}
	tx.apply(d)
	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))

	return tx, nil
}

func validateDetails(d TransactionDetails) error {
	if d.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if d.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if !d.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown transaction status %q", d.Status))
	}
	if !d.PaymentMethod.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be Cash or Online")
	}
	if len(d.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if len(d.ContactName) > maxNameLength || len(d.CustomerName) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Names cannot exceed 200 characters")
	}
	return nil
}

func (t *Transaction) apply(d TransactionDetails) {
	t.Amount = d.Amount
	t.Date = d.Date
	t.DueDate = nil
	if d.DueDate != nil && !d.DueDate.IsZero() {
		due := CalendarDay(*d.DueDate)
		t.DueDate = &due
	}
	t.Status = d.Status
	t.PaymentMethod = d.PaymentMethod
	t.ContactID = d.ContactID
	t.ContactName = strings.TrimSpace(d.ContactName)
	t.CustomerName = strings.TrimSpace(d.CustomerName)
	t.Description = strings.TrimSpace(d.Description)
	t.Category = strings.TrimSpace(d.Category)
}

// Details returns the editable fields, for callers that patch a subset
func (t *Transaction) Details() TransactionDetails {
	return TransactionDetails{
		Amount:        t.Amount,
		Date:          t.Date,
		DueDate:       t.DueDate,
		Status:        t.Status,
		PaymentMethod: t.PaymentMethod,
		ContactID:     t.ContactID,
		ContactName:   t.ContactName,
		CustomerName:  t.CustomerName,
		Description:   t.Description,
		Category:      t.Category,
	}
}

// Update replaces the editable fields. The type and number never change.
func (t *Transaction) Update(d TransactionDetails) error {
	if err := validateDetails(d); err != nil {
		return err
	}
	if t.Type == TransactionTypeInvoice &&
		strings.TrimSpace(d.CustomerName) == "" && strings.TrimSpace(d.ContactName) == "" && d.ContactID == nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Invoice requires a customer")
	}

	t.apply(d)
	t.Touch()
	t.AddDomainEvent(NewTransactionUpdatedEvent(t))
	return nil
}

// MarkPaid settles an outstanding transaction through the given bucket
func (t *Transaction) MarkPaid(method PaymentMethod) error {
	if t.Status == TransactionStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already paid")
	}
	if method != "" {
		if !method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be Cash or Online")
		}
		t.PaymentMethod = method
	}

	t.Status = TransactionStatusPaid
	t.Touch()
	t.AddDomainEvent(NewTransactionStatusChangedEvent(t, TransactionStatusPaid))
	return nil
}

// MarkOverdue flags a pending transaction as overdue
func (t *Transaction) MarkOverdue() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s transaction as overdue", t.Status))
	}

	t.Status = TransactionStatusOverdue
	t.Touch()
	t.AddDomainEvent(NewTransactionStatusChangedEvent(t, TransactionStatusOverdue))
	return nil
}

// AttachReceipt points the transaction at an uploaded receipt
func (t *Transaction) AttachReceipt(storageKey string) error {
	if storageKey == "" {
		return shared.NewDomainError("INVALID_ATTACHMENT", "Storage key cannot be empty")
	}
	t.AttachmentKey = storageKey
	t.Touch()
	return nil
}

// DetachReceipt clears the receipt and returns the old key
func (t *Transaction) DetachReceipt() string {
	key := t.AttachmentKey
	t.AttachmentKey = ""
	t.Touch()
	return key
}

// MarkDeleted queues the deletion event before the row is removed
func (t *Transaction) MarkDeleted() {
	t.AddDomainEvent(NewTransactionDeletedEvent(t))
}

// DisplayName is the counterparty shown in lists
func (t *Transaction) DisplayName() string {
	if t.CustomerName != "" {
		return t.CustomerName
	}
	return t.ContactName
}
