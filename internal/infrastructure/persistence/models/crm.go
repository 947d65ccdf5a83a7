package models

import (
	"fmt"

	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
)

// ContactModel is the persistence model for crm.Contact. Receivables are
// stored inline as a JSON array.
type ContactModel struct {
	TenantAggregateModel
	Type        string `gorm:"type:varchar(20);not null;index"`
	Name        string `gorm:"type:varchar(200);not null"`
	Email       string `gorm:"type:varchar(200)"`
	Phone       string `gorm:"type:varchar(50)"`
	Notes       string `gorm:"type:text"`
	Receivables string `gorm:"type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ContactModelFromDomain maps a contact to its row
func ContactModelFromDomain(c *crm.Contact) (*ContactModel, error) {
	raw, err := ledger.EncodeReceivables(c.Receivables)
	if err != nil {
		return nil, fmt.Errorf("encode receivables: %w", err)
	}
	return &ContactModel{
		TenantAggregateModel: tenantAggregateModelFromDomain(c.TenantAggregateRoot),
		Type:                 string(c.Type),
		Name:                 c.Name,
		Email:                c.Email,
		Phone:                c.Phone,
		Notes:                c.Notes,
		Receivables:          string(raw),
	}, nil
}

// ToDomain rebuilds the contact. Malformed receivables are an error.
func (m *ContactModel) ToDomain() (*crm.Contact, error) {
	entries, err := ledger.DecodeReceivables([]byte(m.Receivables))
	if err != nil {
		return nil, fmt.Errorf("contact %s: %w", m.ID, err)
	}
	return &crm.Contact{
		TenantAggregateRoot: m.TenantAggregateModel.toDomain(),
		Type:                crm.ContactType(m.Type),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Notes:               m.Notes,
		Receivables:         entries,
	}, nil
}
