package models

import (
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for ledger.Transaction
type TransactionModel struct {
	TenantAggregateModel
	Type          string          `gorm:"type:varchar(20);not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Date          time.Time       `gorm:"not null;index"`
	DueDate       *time.Time
	PaymentMethod string     `gorm:"type:varchar(20);not null"`
	ContactID     *uuid.UUID `gorm:"type:uuid;index"`
	ContactName   string     `gorm:"type:varchar(200)"`
	CustomerName  string     `gorm:"type:varchar(200)"`
	Description   string     `gorm:"type:varchar(500)"`
	Category      string     `gorm:"type:varchar(100)"`
	AttachmentKey string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// TransactionModelFromDomain maps a transaction to its row
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	return &TransactionModel{
		TenantAggregateModel: tenantAggregateModelFromDomain(t.TenantAggregateRoot),
		Type:                 string(t.Type),
		Status:               string(t.Status),
		InvoiceNumber:        t.InvoiceNumber,
		Amount:               t.Amount,
		Date:                 t.Date,
		DueDate:              t.DueDate,
		PaymentMethod:        string(t.PaymentMethod),
		ContactID:            t.ContactID,
		ContactName:          t.ContactName,
		CustomerName:         t.CustomerName,
		Description:          t.Description,
		Category:             t.Category,
		AttachmentKey:        t.AttachmentKey,
	}
}

// ToDomain rebuilds the transaction without pending events
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		TenantAggregateRoot: m.TenantAggregateModel.toDomain(),
		Type:                ledger.TransactionType(m.Type),
		Status:              ledger.TransactionStatus(m.Status),
		InvoiceNumber:       m.InvoiceNumber,
		Amount:              m.Amount,
		Date:                m.Date,
		DueDate:             m.DueDate,
		PaymentMethod:       ledger.PaymentMethod(m.PaymentMethod),
		ContactID:           m.ContactID,
		ContactName:         m.ContactName,
		CustomerName:        m.CustomerName,
		Description:         m.Description,
		Category:            m.Category,
		AttachmentKey:       m.AttachmentKey,
	}
}
