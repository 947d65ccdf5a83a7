package crm

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactType distinguishes students from vendors and prospective leads
type ContactType string

const (
	ContactTypeStudent ContactType = "Student"
	ContactTypeVendor  ContactType = "Vendor"
	ContactTypeLead    ContactType = "Lead"
)

// IsValid checks if the type is a valid ContactType
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeStudent, ContactTypeVendor, ContactTypeLead:
		return true
	}
	return false
}

// String returns the string representation of ContactType
func (t ContactType) String() string {
	return string(t)
}

// Contact is a student, vendor or lead. Students carry the receivables
// opened from their accepted quotations.
type Contact struct {
	shared.TenantAggregateRoot
	Type        ContactType              `json:"type"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	Phone       string                   `json:"phone"`
	Notes       string                   `json:"notes"`
	Receivables []ledger.ReceivableEntry `json:"receivables"`
}

// ContactDetails holds the editable profile fields
type ContactDetails struct {
	Type  ContactType
	Name  string
	Email string
	Phone string
	Notes string
}

// NewContact creates a new contact
func NewContact(tenantID uuid.UUID, d ContactDetails) (*Contact, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := validateContactDetails(d); err != nil {
		return nil, err
	}

	c := &Contact{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Receivables:         make([]ledger.ReceivableEntry, 0),
	}
	c.apply(d)
	c.AddDomainEvent(NewContactCreatedEvent(c))
	return c, nil
}

func validateContactDetails(d ContactDetails) error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_CONTACT_TYPE", fmt.Sprintf("Unknown contact type %q", d.Type))
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot exceed 200 characters")
	}
	if email := strings.TrimSpace(d.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
		}
	}
	if len(d.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	return nil
}

func (c *Contact) apply(d ContactDetails) {
	c.Type = d.Type
	c.Name = strings.TrimSpace(d.Name)
	c.Email = strings.ToLower(strings.TrimSpace(d.Email))
	c.Phone = strings.TrimSpace(d.Phone)
	c.Notes = strings.TrimSpace(d.Notes)
}

// Update replaces the profile fields
func (c *Contact) Update(d ContactDetails) error {
	if err := validateContactDetails(d); err != nil {
		return err
	}
	c.apply(d)
	c.Touch()
	c.AddDomainEvent(NewContactUpdatedEvent(c))
	return nil
}

// AddReceivable opens a receivable for an accepted quotation
func (c *Contact) AddReceivable(quotationRef string, total decimal.Decimal, dueDate *time.Time) (*ledger.ReceivableEntry, error) {
	ref := strings.TrimSpace(quotationRef)
	for _, existing := range c.Receivables {
		if strings.EqualFold(existing.QuotationRef, ref) {
			return nil, shared.NewDomainError("DUPLICATE_RECEIVABLE",
				fmt.Sprintf("A receivable for quotation %s already exists", ref))
		}
	}

	entry, err := ledger.NewReceivableEntry(ref, total, dueDate)
	if err != nil {
		return nil, err
	}
	c.Receivables = append(c.Receivables, entry)
	c.Touch()
	c.AddDomainEvent(NewReceivableOpenedEvent(c, entry))
	return &c.Receivables[len(c.Receivables)-1], nil
}

// Receivable finds an entry by id
func (c *Contact) Receivable(entryID string) (*ledger.ReceivableEntry, error) {
	for i := range c.Receivables {
		if c.Receivables[i].ID == entryID {
			return &c.Receivables[i], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Receivable %s not found", entryID))
}

// ApplyReceivablePayment records money collected against an entry
func (c *Contact) ApplyReceivablePayment(entryID string, amount decimal.Decimal) (*ledger.ReceivableEntry, error) {
	entry, err := c.Receivable(entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.ApplyPayment(amount); err != nil {
		return nil, err
	}
	c.Touch()
	c.AddDomainEvent(NewReceivablePaymentAppliedEvent(c, *entry, amount))
	return entry, nil
}

// MarkReceivableOverdue flags an entry as overdue
func (c *Contact) MarkReceivableOverdue(entryID string) error {
	entry, err := c.Receivable(entryID)
	if err != nil {
		return err
	}
	if err := entry.MarkOverdue(); err != nil {
		return err
	}
	c.Touch()
	c.AddDomainEvent(NewReceivableStatusChangedEvent(c, *entry))
	return nil
}

// RemoveReceivable deletes an entry, e.g. when a quotation is withdrawn
func (c *Contact) RemoveReceivable(entryID string) error {
	for i := range c.Receivables {
		if c.Receivables[i].ID == entryID {
			removed := c.Receivables[i]
			c.Receivables = append(c.Receivables[:i], c.Receivables[i+1:]...)
			c.Touch()
			c.AddDomainEvent(NewReceivableRemovedEvent(c, removed))
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Receivable %s not found", entryID))
}

// MarkDeleted queues the deletion event before the row is removed
func (c *Contact) MarkDeleted() {
	c.AddDomainEvent(NewContactDeletedEvent(c))
}

// OutstandingBalance sums what the contact still owes
func (c *Contact) OutstandingBalance() decimal.Decimal {
	return c.LedgerView().Outstanding()
}

// LedgerView is the read model the ledger aggregator consumes
func (c *Contact) LedgerView() ledger.ContactLedger {
	return ledger.ContactLedger{
		ContactID:   c.ID,
		Name:        c.Name,
		Receivables: c.Receivables,
	}
}

// LedgerViews maps contacts to aggregator input
func LedgerViews(contacts []Contact) []ledger.ContactLedger {
	views := make([]ledger.ContactLedger, 0, len(contacts))
	for i := range contacts {
		views = append(views, contacts[i].LedgerView())
	}
	return views
}
