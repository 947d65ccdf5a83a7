package handler

import (
	"time"

	domainledger "github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// endOfDay widens a calendar-date upper bound to cover the whole day
func endOfDay(d *dto.Date) *time.Time {
	t := d.Ptr()
	if t == nil {
		return nil
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		end := domainledger.DayEnd(*t)
		return &end
	}
	return t
}

// TransactionRequest is the body of the create and update endpoints
type TransactionRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"gt=0"`
	Date          dto.Date        `json:"date" binding:"required"`
	DueDate       *dto.Date       `json:"due_date"`
	Status        string          `json:"status" binding:"omitempty,oneof=Paid Pending Overdue"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=Cash Online"`
	ContactID     *uuid.UUID      `json:"contact_id"`
	ContactName   string          `json:"contact" binding:"max=200"`
	CustomerName  string          `json:"customer_name" binding:"max=200"`
	Description   string          `json:"description" binding:"max=1000"`
	Category      string          `json:"category" binding:"max=100"`
}

// UpdateTransactionRequest adds the version the client last saw
type UpdateTransactionRequest struct {
	TransactionRequest
	Version int `json:"version" binding:"omitempty,min=1"`
}

// TransferRequest is the body of the transfer endpoint
type TransferRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	Date        dto.Date        `json:"date" binding:"required"`
	From        string          `json:"from" binding:"required,oneof=Cash Online"`
	Description string          `json:"description" binding:"max=1000"`
}

// MarkPaidRequest optionally overrides the payment method
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=Cash Online"`
}

// TransactionListQuery is the query of GET /transactions
type TransactionListQuery struct {
	Page          int       `form:"page" binding:"omitempty,min=1"`
	PageSize      int       `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string    `form:"order_by" binding:"omitempty,oneof=date amount invoice_number created_at updated_at"`
	OrderDir      string    `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search        string    `form:"search" binding:"max=100"`
	Type          string    `form:"type" binding:"omitempty,oneof=Income Invoice Purchase Expense Transfer"`
	Status        string    `form:"status" binding:"omitempty,oneof=Paid Pending Overdue"`
	PaymentMethod string    `form:"payment_method" binding:"omitempty,oneof=Cash Online"`
	ContactID     string    `form:"contact_id" binding:"omitempty,uuid"`
	From          *dto.Date `form:"from"`
	To            *dto.Date `form:"to"`
}

// ActivityQuery is the query of GET /ledger/activity
type ActivityQuery struct {
	Type      string    `form:"type" binding:"omitempty,oneof=All Income Invoice Purchase Expense Transfer Due"`
	StartDate *dto.Date `form:"start_date"`
	EndDate   *dto.Date `form:"end_date"`
	Search    string    `form:"search" binding:"max=100"`
}

// UploadURLRequest asks for a presigned receipt upload
type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmUploadRequest attaches an uploaded receipt
type ConfirmUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// ContactRequest is the body of the contact create and update endpoints
type ContactRequest struct {
	Type    string `json:"type" binding:"required,oneof=Student Vendor Lead"`
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Notes   string `json:"notes" binding:"max=2000"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// ContactListQuery is the query of GET /contacts
type ContactListQuery struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by" binding:"omitempty,oneof=name created_at updated_at"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search         string `form:"search" binding:"max=100"`
	Type           string `form:"type" binding:"omitempty,oneof=Student Vendor Lead"`
	WithReceivable bool   `form:"with_receivable"`
}

// ReceivableRequest opens a receivable on a contact
type ReceivableRequest struct {
	QuotationRef string          `json:"quotation_ref" binding:"required,max=100"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"gt=0"`
	DueDate      *dto.Date       `json:"due_date"`
}

// PaymentRequest records a collection against a receivable
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"gt=0"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=Cash Online"`
	Description   string          `json:"description" binding:"max=1000"`
}

// ActivityLogQuery is the query of GET /activity-logs
type ActivityLogQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search     string `form:"search" binding:"max=100"`
	EntityType string `form:"entity_type" binding:"omitempty,oneof=Transaction Contact"`
	EntityID   string `form:"entity_id" binding:"omitempty,uuid"`
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
	Order      string `form:"order" binding:"omitempty,oneof=newest oldest"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	Username string    `json:"username" binding:"required,max=100"`
	Password string    `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest is the body of POST /auth/refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the
// access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
