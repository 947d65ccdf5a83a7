package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableStatus is the collection state of a quotation-derived receivable
type ReceivableStatus string

const (
	ReceivableStatusPending ReceivableStatus = "Pending"
	ReceivableStatusPartial ReceivableStatus = "Partial"
	ReceivableStatusPaid    ReceivableStatus = "Paid"
	ReceivableStatusOverdue ReceivableStatus = "Overdue"
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusPending, ReceivableStatusPartial, ReceivableStatusPaid, ReceivableStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// TransactionStatus maps the receivable status onto the transaction status
// shown for its Due row: Paid and Overdue carry over, anything else is Pending.
func (s ReceivableStatus) TransactionStatus() TransactionStatus {
	switch s {
	case ReceivableStatusPaid:
		return TransactionStatusPaid
	case ReceivableStatusOverdue:
		return TransactionStatusOverdue
	default:
		return TransactionStatusPending
	}
}

// ReceivableEntry is money a contact owes against an accepted quotation.
// Entries live on the contact and are never stored as transactions.
type ReceivableEntry struct {
	ID              string           `json:"id"`
	QuotationRef    string           `json:"quotationRef"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	PaidAmount      decimal.Decimal  `json:"paidAmount"`
	RemainingAmount decimal.Decimal  `json:"remainingAmount"`
	Status          ReceivableStatus `json:"status"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// NewReceivableEntry opens a receivable for the full quotation total
func NewReceivableEntry(quotationRef string, total decimal.Decimal, dueDate *time.Time) (ReceivableEntry, error) {
	entry := ReceivableEntry{
		ID:              uuid.NewString(),
		QuotationRef:    strings.TrimSpace(quotationRef),
		TotalAmount:     total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Status:          ReceivableStatusPending,
		DueDate:         dueDate,
		CreatedAt:       time.Now(),
	}
	if entry.QuotationRef == "" {
		return ReceivableEntry{}, shared.NewDomainError("INVALID_RECEIVABLE", "Quotation reference is required")
	}
	if !total.IsPositive() {
		return ReceivableEntry{}, shared.NewDomainError("INVALID_RECEIVABLE", "Quotation total must be positive")
	}
	return entry, nil
}

// Validate enforces the shape every stored entry must have
func (e ReceivableEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return shared.NewDomainError("INVALID_RECEIVABLE", "Receivable id is required")
	}
	if e.TotalAmount.IsNegative() || e.PaidAmount.IsNegative() || e.RemainingAmount.IsNegative() {
		return shared.NewDomainError("INVALID_RECEIVABLE", fmt.Sprintf("Receivable %s has a negative amount", e.ID))
	}
	if !e.RemainingAmount.Add(e.PaidAmount).Equal(e.TotalAmount) {
		return shared.NewDomainError("INVALID_RECEIVABLE",
			fmt.Sprintf("Receivable %s: remaining %s plus paid %s does not equal total %s",
				e.ID, e.RemainingAmount, e.PaidAmount, e.TotalAmount))
	}
	if !e.Status.IsValid() {
		return shared.NewDomainError("INVALID_RECEIVABLE", fmt.Sprintf("Receivable %s has unknown status %q", e.ID, e.Status))
	}
	if e.CreatedAt.IsZero() {
		return shared.NewDomainError("INVALID_RECEIVABLE", fmt.Sprintf("Receivable %s has no creation date", e.ID))
	}
	return nil
}

// ApplyPayment moves amount from remaining to paid
func (e *ReceivableEntry) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if e.Status == ReceivableStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Receivable is already settled")
	}
	if amount.GreaterThan(e.RemainingAmount) {
		return shared.NewDomainError("RECEIVABLE_OVERPAID",
			fmt.Sprintf("Payment %s exceeds remaining amount %s", amount, e.RemainingAmount))
	}

	e.PaidAmount = e.PaidAmount.Add(amount)
	e.RemainingAmount = e.RemainingAmount.Sub(amount)
	if e.RemainingAmount.IsZero() {
		e.Status = ReceivableStatusPaid
	} else if e.Status != ReceivableStatusOverdue {
		e.Status = ReceivableStatusPartial
	}
	return nil
}

// MarkOverdue flags an unsettled receivable as overdue
func (e *ReceivableEntry) MarkOverdue() error {
	if e.Status == ReceivableStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Settled receivable cannot become overdue")
	}
	e.Status = ReceivableStatusOverdue
	return nil
}

// DecodeReceivables parses the receivables array stored in contact metadata.
// An empty or null payload yields no entries. Every entry is validated.
func DecodeReceivables(raw []byte) ([]ReceivableEntry, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var entries []ReceivableEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, shared.NewDomainError("INVALID_RECEIVABLE", fmt.Sprintf("Malformed receivables: %v", err))
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// EncodeReceivables serialises entries for contact metadata
func EncodeReceivables(entries []ReceivableEntry) ([]byte, error) {
	if entries == nil {
		entries = []ReceivableEntry{}
	}
	return json.Marshal(entries)
}

// ContactLedger is the aggregator's view of a contact: who it is and what
// it still owes through quotation receivables.
type ContactLedger struct {
	ContactID   uuid.UUID
	Name        string
	Receivables []ReceivableEntry
}

// Outstanding sums RemainingAmount across the contact's receivables
func (c ContactLedger) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Receivables {
		total = total.Add(e.RemainingAmount)
	}
	return total
}
