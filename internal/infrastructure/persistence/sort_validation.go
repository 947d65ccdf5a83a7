package persistence

import (
	"fmt"
	"strings"

	"github.com/agency/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowed[trimmed] {
		return trimmed
	}
	return defaultField
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"date":           true,
	"amount":         true,
	"invoice_number": true,
	"status":         true,
	"type":           true,
}

// ContactSortFields contains allowed sort fields for contacts
var ContactSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
}

// ActivityLogSortFields contains allowed sort fields for activity logs
var ActivityLogSortFields = map[string]bool{
	"occurred_at": true,
	"action":      true,
	"entity_type": true,
}

// orderAndPage applies whitelisted ordering and pagination. id is the
// tie-breaker so pages are stable.
func orderAndPage(query *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	query = query.Order(fmt.Sprintf("%s %s, id ASC", field, ValidateSortOrder(f.OrderDir)))

	if f.PageSize > 0 {
		query = query.Limit(f.PageSize)
		if offset := f.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
	}
	return query
}

// searchAny matches the lower-cased pattern against any of the columns.
// LOWER ... LIKE keeps the query portable between postgres and sqlite.
func searchAny(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
