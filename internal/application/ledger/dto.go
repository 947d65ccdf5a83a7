package ledger

import (
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRequest carries an entry form. Empty Status and PaymentMethod
// take the per-type defaults.
type TransactionRequest struct {
	Amount        decimal.Decimal
	Date          time.Time
	DueDate       *time.Time
	Status        string
	PaymentMethod string
	ContactID     *uuid.UUID
	ContactName   string
	CustomerName  string
	Description   string
	Category      string
}

func (r TransactionRequest) details() ledger.TransactionDetails {
	method := ledger.PaymentMethod(r.PaymentMethod)
	if method == "" {
		method = ledger.PaymentMethodCash
	}
	return ledger.TransactionDetails{
		Amount:        r.Amount,
		Date:          r.Date,
		DueDate:       r.DueDate,
		Status:        ledger.TransactionStatus(r.Status),
		PaymentMethod: method,
		ContactID:     r.ContactID,
		ContactName:   r.ContactName,
		CustomerName:  r.CustomerName,
		Description:   r.Description,
		Category:      r.Category,
	}
}

// TransferRequest moves money out of From into the other bucket
type TransferRequest struct {
	Amount      decimal.Decimal
	Date        time.Time
	From        string
	Description string
}

// TransactionListFilter is the list endpoint's query
type TransactionListFilter struct {
	Page          int
	PageSize      int
	SortBy        string
	SortDesc      bool
	Search        string
	Type          string
	Status        string
	PaymentMethod string
	ContactID     *uuid.UUID
	FromDate      *time.Time
	ToDate        *time.Time
}

// TransactionResponse is the API view of a transaction
type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	ContactID     *uuid.UUID      `json:"contact_id,omitempty"`
	ContactName   string          `json:"contact,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	HasAttachment bool            `json:"has_attachment"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToTransactionResponse maps a transaction to its API view
func ToTransactionResponse(tx *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		Type:          string(tx.Type),
		Status:        string(tx.Status),
		InvoiceNumber: tx.InvoiceNumber,
		Amount:        tx.Amount,
		Date:          tx.Date,
		DueDate:       tx.DueDate,
		PaymentMethod: string(tx.PaymentMethod),
		ContactID:     tx.ContactID,
		ContactName:   tx.ContactName,
		CustomerName:  tx.CustomerName,
		Description:   tx.Description,
		Category:      tx.Category,
		HasAttachment: tx.AttachmentKey != "",
		CreatedBy:     tx.CreatedBy,
		Version:       tx.Version,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

// SummaryResponse is the dashboard payload
type SummaryResponse struct {
	ledger.Summary
	AsOf time.Time `json:"as_of"`
}

// ActivityQuery narrows the recent-activity view
type ActivityQuery struct {
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// ActivityEntryResponse is one row of the recent-activity view. Due rows
// come from contact receivables and cannot be edited as transactions.
type ActivityEntryResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Reference     string          `json:"reference"`
	Counterparty  string          `json:"counterparty,omitempty"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	ContactID     *uuid.UUID      `json:"contact_id,omitempty"`
}

// ToActivityEntryResponse maps either kind of activity row
func ToActivityEntryResponse(e ledger.Entry) ActivityEntryResponse {
	resp := ActivityEntryResponse{
		ID:     e.EntryID(),
		Kind:   string(e.Kind()),
		Type:   e.EntryType(),
		Status: string(e.EntryStatus()),
		Amount: e.EntryAmount(),
		Date:   e.EntryDate(),
	}
	switch v := e.(type) {
	case ledger.RealTransaction:
		resp.Reference = v.Transaction.InvoiceNumber
		resp.Counterparty = v.Transaction.DisplayName()
		resp.Description = v.Transaction.Description
		resp.PaymentMethod = string(v.Transaction.PaymentMethod)
		resp.ContactID = v.Transaction.ContactID
	case ledger.SyntheticDueEntry:
		contactID := v.ContactID
		resp.Reference = v.Receivable.QuotationRef
		resp.Counterparty = v.ContactName
		resp.Description = v.Description()
		resp.ContactID = &contactID
	}
	return resp
}

// UploadURLResponse is returned when a receipt upload is requested
type UploadURLResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DownloadURLResponse is a presigned receipt link
type DownloadURLResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
