package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// WindowDays is the length of the trailing window for revenue and expenses
const WindowDays = 30

var half = decimal.NewFromFloat(0.5)

// Summary is the dashboard view of the ledger. It is derived on every
// read and never stored.
type Summary struct {
	Revenue           decimal.Decimal `json:"revenue"`
	Purchases         decimal.Decimal `json:"purchases"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	TotalExpenses     decimal.Decimal `json:"expenses"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`

	CashInHand     decimal.Decimal `json:"cash_in_hand"`
	AccountBalance decimal.Decimal `json:"account_balance"`

	// AccountsReceivable is PendingIncome + ContactReceivables. The two
	// sources are not deduplicated; PossibleDuplicates lists the pairs
	// that look like the same debt.
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	PendingIncome      decimal.Decimal `json:"pending_income"`
	ContactReceivables decimal.Decimal `json:"contact_receivables"`

	Overdue decimal.Decimal `json:"overdue"`

	WindowStart        time.Time             `json:"window_start"`
	PossibleDuplicates []DuplicateReceivable `json:"possible_duplicates"`
}

// Summarize computes the ledger summary as of now. Today is the calendar
// day of now in now's location; the window starts WindowDays before it.
func Summarize(transactions []Transaction, contacts []ContactLedger, now time.Time) Summary {
	today := CalendarDay(now)
	windowStart := today.AddDate(0, 0, -WindowDays)

	s := Summary{
		Revenue:            decimal.Zero,
		Purchases:          decimal.Zero,
		OperatingExpenses:  decimal.Zero,
		PendingIncome:      decimal.Zero,
		ContactReceivables: decimal.Zero,
		Overdue:            decimal.Zero,
		WindowStart:        windowStart,
	}
	cash := decimal.Zero
	bank := decimal.Zero

	for i := range transactions {
		tx := &transactions[i]
		paid := tx.Status == TransactionStatusPaid

		if paid && inWindow(tx.Date, windowStart) {
			switch {
			case tx.Type.IsRevenue():
				s.Revenue = s.Revenue.Add(tx.Amount)
			case tx.Type == TransactionTypePurchase:
				s.Purchases = s.Purchases.Add(tx.Amount)
			case tx.Type == TransactionTypeExpense:
				s.OperatingExpenses = s.OperatingExpenses.Add(tx.Amount)
			}
		}

		if paid {
			cash = cash.Add(bucketDelta(tx, PaymentMethodCash))
			bank = bank.Add(bucketDelta(tx, PaymentMethodOnline))
		}

		if tx.Type == TransactionTypeIncome && tx.Status == TransactionStatusPending {
			s.PendingIncome = s.PendingIncome.Add(tx.Amount)
		}

		if isOverdue(tx, today) {
			s.Overdue = s.Overdue.Add(tx.Amount)
		}
	}

	for _, c := range contacts {
		s.ContactReceivables = s.ContactReceivables.Add(c.Outstanding())
	}

	s.TotalExpenses = s.Purchases.Add(s.OperatingExpenses)
	s.GrossProfit = s.Revenue.Sub(s.Purchases)
	s.NetProfit = s.GrossProfit.Sub(s.OperatingExpenses)
	s.CashInHand = roundHalfUp(cash)
	s.AccountBalance = roundHalfUp(bank)
	s.AccountsReceivable = s.PendingIncome.Add(s.ContactReceivables)
	s.PossibleDuplicates = DetectDuplicateReceivables(transactions, contacts)

	return s
}

// bucketDelta is the signed effect of a paid transaction on one bucket.
// A transfer drains the bucket named by its payment method and fills the
// other one. Any other row only touches the bucket it was paid through.
// Cash and Online use the same rule so transfers always net to zero.
func bucketDelta(tx *Transaction, bucket PaymentMethod) decimal.Decimal {
	if tx.Type == TransactionTypeTransfer {
		if tx.PaymentMethod == bucket {
			return tx.Amount.Neg()
		}
		return tx.Amount
	}
	if tx.PaymentMethod != bucket {
		return decimal.Zero
	}
	switch {
	case tx.Type.IsRevenue():
		return tx.Amount
	case tx.Type.IsOutflow():
		return tx.Amount.Neg()
	}
	return decimal.Zero
}

// isOverdue: a due date strictly before today on an outstanding row, or
// an Overdue row with no due date at all.
func isOverdue(tx *Transaction, today time.Time) bool {
	if tx.DueDate == nil || tx.DueDate.IsZero() {
		return tx.Status == TransactionStatusOverdue
	}
	if !tx.Status.IsOutstanding() {
		return false
	}
	return StoredDay(*tx.DueDate).Before(today)
}

// inWindow compares calendar days: inclusive lower bound, no upper bound.
// A zero date never matches.
func inWindow(date, windowStart time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !StoredDay(date).Before(windowStart)
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf,
// so -2.5 becomes -2 and 2.5 becomes 3.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}
