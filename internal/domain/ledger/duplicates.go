package ledger

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// similarityThreshold is the minimum text similarity for a strong match
	similarityThreshold = 0.6
	// baseConfidence is reported when party and amount match but text does not
	baseConfidence = 0.5
)

var amountTolerance = decimal.RequireFromString("0.01")

// DuplicateReceivable pairs a pending Income transaction with a contact
// receivable that probably describes the same debt. Both are counted in
// AccountsReceivable.
type DuplicateReceivable struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ContactID     uuid.UUID       `json:"contact_id"`
	ContactName   string          `json:"contact_name"`
	ReceivableID  string          `json:"receivable_id"`
	QuotationRef  string          `json:"quotation_ref"`
	Amount        decimal.Decimal `json:"amount"`
	Confidence    float64         `json:"confidence"`
	Reason        string          `json:"reason"`
}

// DetectDuplicateReceivables flags pending Income rows that overlap with
// contact receivables. A pair needs the same party and an amount equal to
// the receivable's remaining or total amount; similar text between the
// transaction and the quotation reference raises the confidence.
func DetectDuplicateReceivables(transactions []Transaction, contacts []ContactLedger) []DuplicateReceivable {
	out := []DuplicateReceivable{}

	for i := range transactions {
		tx := &transactions[i]
		if tx.Type != TransactionTypeIncome || tx.Status != TransactionStatusPending {
			continue
		}
		for _, c := range contacts {
			if !sameParty(tx, c) {
				continue
			}
			for _, r := range c.Receivables {
				if !r.RemainingAmount.IsPositive() {
					continue
				}
				if !amountsMatch(tx.Amount, r.RemainingAmount) && !amountsMatch(tx.Amount, r.TotalAmount) {
					continue
				}

				sim := textSimilarity(tx, r.QuotationRef)
				confidence := baseConfidence
				reason := "same contact and amount"
				if sim >= similarityThreshold {
					confidence = baseConfidence + (1-baseConfidence)*sim
					reason = fmt.Sprintf("same contact and amount, reference similarity %.2f", sim)
				}

				out = append(out, DuplicateReceivable{
					TransactionID: tx.ID,
					InvoiceNumber: tx.InvoiceNumber,
					ContactID:     c.ContactID,
					ContactName:   c.Name,
					ReceivableID:  r.ID,
					QuotationRef:  r.QuotationRef,
					Amount:        tx.Amount,
					Confidence:    confidence,
					Reason:        reason,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func sameParty(tx *Transaction, c ContactLedger) bool {
	if tx.ContactID != nil && *tx.ContactID == c.ContactID {
		return true
	}
	name := normalize(c.Name)
	if name == "" {
		return false
	}
	return normalize(tx.ContactName) == name || normalize(tx.CustomerName) == name
}

func amountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// textSimilarity compares the quotation reference against the
// transaction's description and invoice number and keeps the best score.
func textSimilarity(tx *Transaction, quotationRef string) float64 {
	ref := normalize(quotationRef)
	if ref == "" {
		return 0
	}
	best := 0.0
	for _, candidate := range []string{tx.Description, tx.InvoiceNumber} {
		c := normalize(candidate)
		if c == "" {
			continue
		}
		if strings.Contains(c, ref) || strings.Contains(ref, c) {
			return 1
		}
		if s := similarity(c, ref); s > best {
			best = s
		}
	}
	return best
}

// similarity is 1 - editDistance/maxLen over runes
func similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

func normalize(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}
