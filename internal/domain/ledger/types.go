package ledger

// TransactionType classifies a money movement
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "Income"
	TransactionTypeInvoice  TransactionType = "Invoice"
	TransactionTypePurchase TransactionType = "Purchase"
	TransactionTypeExpense  TransactionType = "Expense"
	TransactionTypeTransfer TransactionType = "Transfer"
)

// IsValid checks if the type is one that can be stored
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeInvoice, TransactionTypePurchase,
		TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsRevenue is true for Income and Invoice, which are synonyms for incoming revenue
func (t TransactionType) IsRevenue() bool {
	return t == TransactionTypeIncome || t == TransactionTypeInvoice
}

// IsOutflow is true for Purchase and Expense
func (t TransactionType) IsOutflow() bool {
	return t == TransactionTypePurchase || t == TransactionTypeExpense
}

// NumberPrefix returns the document number prefix used for the type
func (t TransactionType) NumberPrefix() string {
	switch t {
	case TransactionTypeInvoice:
		return "INV"
	case TransactionTypeIncome:
		return "RCT"
	case TransactionTypePurchase:
		return "PUR"
	case TransactionTypeExpense:
		return "EXP"
	case TransactionTypeTransfer:
		return "TRF"
	default:
		return "TXN"
	}
}

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "Paid"
	TransactionStatusPending TransactionStatus = "Pending"
	TransactionStatusOverdue TransactionStatus = "Overdue"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPaid, TransactionStatusPending, TransactionStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsOutstanding is true while money is still owed
func (s TransactionStatus) IsOutstanding() bool {
	return s == TransactionStatusPending || s == TransactionStatusOverdue
}

// PaymentMethod selects the bucket a transaction moves money through.
// The system models exactly two buckets: physical cash and the bank.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOnline PaymentMethod = "Online"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Counterpart returns the other bucket
func (m PaymentMethod) Counterpart() PaymentMethod {
	if m == PaymentMethodCash {
		return PaymentMethodOnline
	}
	return PaymentMethodCash
}
