package handler

import (
	"github.com/agency/backoffice/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the dashboard figures and the recent-activity feed
type LedgerHandler struct {
	BaseHandler
	summaries *ledger.SummaryService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(summaries *ledger.SummaryService) *LedgerHandler {
	return &LedgerHandler{summaries: summaries}
}

// Summary godoc
// @Summary  Revenue, expenses, profit, cash, bank, receivables and overdue
// @Router   /ledger/summary [get]
func (h *LedgerHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	summary, err := h.summaries.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RecentActivity godoc
// @Summary  Newest transactions and receivable dues
// @Param    type        query string false "All, Income, Invoice, Purchase, Expense, Transfer or Due"
// @Param    start_date  query string false "YYYY-MM-DD or RFC3339"
// @Param    end_date    query string false "YYYY-MM-DD or RFC3339, inclusive"
// @Param    search      query string false "case-insensitive text"
// @Router   /ledger/activity [get]
func (h *LedgerHandler) RecentActivity(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ActivityQuery
	if !h.bindQuery(c, &q) {
		return
	}

	entries, err := h.summaries.RecentActivity(c.Request.Context(), tenantID, ledger.ActivityQuery{
		Type:      q.Type,
		StartDate: q.StartDate.Ptr(),
		EndDate:   endOfDay(q.EndDate),
		Search:    q.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Duplicates godoc
// @Summary  Pending Income rows that repeat a contact receivable
// @Router   /ledger/duplicates [get]
func (h *LedgerHandler) Duplicates(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	dups, err := h.summaries.DuplicateReceivables(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dups)
}
