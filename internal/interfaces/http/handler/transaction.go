package handler

import (
	"context"

	"github.com/agency/backoffice/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles transaction entry, listing and receipts
type TransactionHandler struct {
	BaseHandler
	transactions *ledger.TransactionService
	attachments  *ledger.AttachmentService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *ledger.TransactionService, attachments *ledger.AttachmentService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, attachments: attachments}
}

type createFunc func(ctx context.Context, tenantID uuid.UUID, req ledger.TransactionRequest) (*ledger.TransactionResponse, error)

func toServiceRequest(req TransactionRequest) ledger.TransactionRequest {
	return ledger.TransactionRequest{
		Amount:        req.Amount,
		Date:          req.Date.Time,
		DueDate:       req.DueDate.Ptr(),
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		ContactID:     req.ContactID,
		ContactName:   req.ContactName,
		CustomerName:  req.CustomerName,
		Description:   req.Description,
		Category:      req.Category,
	}
}

func (h *TransactionHandler) create(c *gin.Context, fn createFunc) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req TransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := fn(c.Request.Context(), tenantID, toServiceRequest(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// CreateInvoice godoc
// @Summary  Record an invoice raised to a customer
// @Router   /transactions/invoices [post]
func (h *TransactionHandler) CreateInvoice(c *gin.Context) {
	h.create(c, h.transactions.CreateInvoice)
}

// CreateIncome godoc
// @Summary  Record money received outside an invoice
// @Router   /transactions/incomes [post]
func (h *TransactionHandler) CreateIncome(c *gin.Context) {
	h.create(c, h.transactions.CreateIncome)
}

// CreatePurchase godoc
// @Summary  Record a purchase from a vendor
// @Router   /transactions/purchases [post]
func (h *TransactionHandler) CreatePurchase(c *gin.Context) {
	h.create(c, h.transactions.CreatePurchase)
}

// CreateExpense godoc
// @Summary  Record an operating expense
// @Router   /transactions/expenses [post]
func (h *TransactionHandler) CreateExpense(c *gin.Context) {
	h.create(c, h.transactions.CreateExpense)
}

// CreateTransfer godoc
// @Summary  Move money between cash and bank
// @Router   /transactions/transfers [post]
func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req TransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.transactions.CreateTransfer(c.Request.Context(), tenantID, ledger.TransferRequest{
		Amount:      req.Amount,
		Date:        req.Date.Time,
		From:        req.From,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// List godoc
// @Summary  Page through transactions
// @Router   /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q TransactionListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	filter := ledger.TransactionListFilter{
		Page:          q.Page,
		PageSize:      q.PageSize,
		SortBy:        q.OrderBy,
		SortDesc:      q.OrderDir == "desc",
		Search:        q.Search,
		Type:          q.Type,
		Status:        q.Status,
		PaymentMethod: q.PaymentMethod,
		ContactID:     optionalUUID(q.ContactID),
		FromDate:      q.From.Ptr(),
		ToDate:        endOfDay(q.To),
	}

	txs, total, err := h.transactions.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, q.Page, q.PageSize)
}

// Get godoc
// @Summary  One transaction
// @Router   /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	tx, err := h.transactions.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Update godoc
// @Summary  Edit a transaction; a non-zero version enables the lock check
// @Router   /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req UpdateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.transactions.Update(c.Request.Context(), tenantID, id, toServiceRequest(req.TransactionRequest), req.Version)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete godoc
// @Summary  Delete a transaction and its receipt
// @Router   /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkPaid godoc
// @Summary  Settle a pending or overdue transaction
// @Router   /transactions/{id}/pay [post]
func (h *TransactionHandler) MarkPaid(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req MarkPaidRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.transactions.MarkPaid(c.Request.Context(), tenantID, id, req.PaymentMethod)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// MarkOverdue godoc
// @Summary  Flag a pending transaction as overdue
// @Router   /transactions/{id}/overdue [post]
func (h *TransactionHandler) MarkOverdue(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	tx, err := h.transactions.MarkOverdue(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// RequestUpload godoc
// @Summary  Presigned PUT URL for a receipt
// @Router   /transactions/{id}/attachment/upload-url [post]
func (h *TransactionHandler) RequestUpload(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.attachments.RequestUpload(c.Request.Context(), tenantID, id, req.FileName, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmUpload godoc
// @Summary  Attach an uploaded receipt to the transaction
// @Router   /transactions/{id}/attachment/confirm [post]
func (h *TransactionHandler) ConfirmUpload(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.attachments.ConfirmUpload(c.Request.Context(), tenantID, id, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// DownloadAttachment godoc
// @Summary  Presigned GET URL for the receipt
// @Router   /transactions/{id}/attachment [get]
func (h *TransactionHandler) DownloadAttachment(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.attachments.DownloadURL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveAttachment godoc
// @Summary  Detach and delete the receipt
// @Router   /transactions/{id}/attachment [delete]
func (h *TransactionHandler) RemoveAttachment(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.attachments.Remove(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *TransactionHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return tenantID, id, ok
}
