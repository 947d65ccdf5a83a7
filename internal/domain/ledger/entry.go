package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind tells the two kinds of activity rows apart
type EntryKind string

const (
	EntryKindTransaction EntryKind = "transaction"
	EntryKindDue         EntryKind = "due"
)

// EntryTypeDue is the display type of rows synthesised from receivables.
// It is never a valid TransactionType.
const EntryTypeDue = "Due"

// Entry is a row in the recent-activity view. It is either a RealTransaction
// or a SyntheticDueEntry; the set is closed to this package.
type Entry interface {
	Kind() EntryKind
	EntryID() string
	EntryType() string
	EntryStatus() TransactionStatus
	EntryAmount() decimal.Decimal
	EntryDate() time.Time
	searchFields() [5]string
}

// RealTransaction wraps a stored transaction
type RealTransaction struct {
	Transaction *Transaction
}

func (r RealTransaction) Kind() EntryKind                { return EntryKindTransaction }
func (r RealTransaction) EntryID() string                { return r.Transaction.ID.String() }
func (r RealTransaction) EntryType() string              { return string(r.Transaction.Type) }
func (r RealTransaction) EntryStatus() TransactionStatus { return r.Transaction.Status }
func (r RealTransaction) EntryAmount() decimal.Decimal   { return r.Transaction.Amount }
func (r RealTransaction) EntryDate() time.Time           { return r.Transaction.Date }

func (r RealTransaction) searchFields() [5]string {
	t := r.Transaction
	return [5]string{t.InvoiceNumber, t.ID.String(), t.ContactName, t.CustomerName, t.Description}
}

// SyntheticDueEntry presents a contact receivable as a Due row.
// It has no persistence path.
type SyntheticDueEntry struct {
	ContactID   uuid.UUID
	ContactName string
	Receivable  ReceivableEntry
}

func (s SyntheticDueEntry) Kind() EntryKind      { return EntryKindDue }
func (s SyntheticDueEntry) EntryID() string      { return s.Receivable.ID }
func (s SyntheticDueEntry) EntryType() string    { return EntryTypeDue }
func (s SyntheticDueEntry) EntryDate() time.Time { return s.Receivable.CreatedAt }

// EntryStatus maps the receivable status onto Paid, Overdue or Pending
func (s SyntheticDueEntry) EntryStatus() TransactionStatus {
	return s.Receivable.Status.TransactionStatus()
}

// EntryAmount is what is still owed, not the quotation total
func (s SyntheticDueEntry) EntryAmount() decimal.Decimal {
	return s.Receivable.RemainingAmount
}

// Description is the text shown and searched for the row
func (s SyntheticDueEntry) Description() string {
	return fmt.Sprintf("Outstanding balance for quotation %s", s.Receivable.QuotationRef)
}

func (s SyntheticDueEntry) searchFields() [5]string {
	return [5]string{s.Receivable.QuotationRef, s.Receivable.ID, s.ContactName, s.ContactName, s.Description()}
}

// Ensure both kinds implement Entry
var (
	_ Entry = RealTransaction{}
	_ Entry = SyntheticDueEntry{}
)
