package crm

import (
	"time"

	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactRequest carries the contact form
type ContactRequest struct {
	Type  string
	Name  string
	Email string
	Phone string
	Notes string
}

func (r ContactRequest) details() crm.ContactDetails {
	return crm.ContactDetails{
		Type:  crm.ContactType(r.Type),
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Notes: r.Notes,
	}
}

// ContactListFilter is the list endpoint's query
type ContactListFilter struct {
	Page           int
	PageSize       int
	SortBy         string
	SortDesc       bool
	Search         string
	Type           string
	WithReceivable bool
}

// ReceivableRequest opens a receivable for an accepted quotation
type ReceivableRequest struct {
	QuotationRef string
	TotalAmount  decimal.Decimal
	DueDate      *time.Time
}

// PaymentRequest records money collected against a receivable
type PaymentRequest struct {
	Amount        decimal.Decimal
	PaymentMethod string
	Description   string
}

// ReceivableResponse is the API view of a receivable entry
type ReceivableResponse struct {
	ID              string          `json:"id"`
	QuotationRef    string          `json:"quotation_ref"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ContactResponse is the API view of a contact
type ContactResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Type               string               `json:"type"`
	Name               string               `json:"name"`
	Email              string               `json:"email,omitempty"`
	Phone              string               `json:"phone,omitempty"`
	Notes              string               `json:"notes,omitempty"`
	Receivables        []ReceivableResponse `json:"receivables"`
	OutstandingBalance decimal.Decimal      `json:"outstanding_balance"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// PaymentResponse reports the updated entry and the Income row booked for it
type PaymentResponse struct {
	Receivable    ReceivableResponse `json:"receivable"`
	TransactionID uuid.UUID          `json:"transaction_id"`
	InvoiceNumber string             `json:"invoice_number"`
}

// ToReceivableResponse maps a receivable entry
func ToReceivableResponse(e ledger.ReceivableEntry) ReceivableResponse {
	return ReceivableResponse{
		ID:              e.ID,
		QuotationRef:    e.QuotationRef,
		TotalAmount:     e.TotalAmount,
		PaidAmount:      e.PaidAmount,
		RemainingAmount: e.RemainingAmount,
		Status:          string(e.Status),
		DueDate:         e.DueDate,
		CreatedAt:       e.CreatedAt,
	}
}

// ToContactResponse maps a contact and its receivables
func ToContactResponse(c *crm.Contact) ContactResponse {
	receivables := make([]ReceivableResponse, len(c.Receivables))
	for i, e := range c.Receivables {
		receivables[i] = ToReceivableResponse(e)
	}
	return ContactResponse{
		ID:                 c.ID,
		Type:               string(c.Type),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Notes:              c.Notes,
		Receivables:        receivables,
		OutstandingBalance: c.OutstandingBalance(),
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
