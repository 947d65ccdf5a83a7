package handler

import (
	"github.com/agency/backoffice/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactHandler handles students, vendors, leads and their receivables
type ContactHandler struct {
	BaseHandler
	contacts *crm.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *crm.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (r ContactRequest) toService() crm.ContactRequest {
	return crm.ContactRequest{
		Type:  r.Type,
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Notes: r.Notes,
	}
}

// Create godoc
// @Summary  Add a contact
// @Router   /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req ContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), tenantID, req.toService())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// List godoc
// @Summary  Page through contacts
// @Router   /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q ContactListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	contacts, total, err := h.contacts.List(c.Request.Context(), tenantID, crm.ContactListFilter{
		Page:           q.Page,
		PageSize:       q.PageSize,
		SortBy:         q.OrderBy,
		SortDesc:       q.OrderDir == "desc",
		Search:         q.Search,
		Type:           q.Type,
		WithReceivable: q.WithReceivable,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, contacts, total, q.Page, q.PageSize)
}

// Get godoc
// @Summary  One contact with its receivables
// @Router   /contacts/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Update godoc
// @Summary  Edit a contact
// @Router   /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req ContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), tenantID, id, req.toService(), req.Version)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete godoc
// @Summary  Delete a contact
// @Router   /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddReceivable godoc
// @Summary  Open a receivable for an accepted quotation
// @Router   /contacts/{id}/receivables [post]
func (h *ContactHandler) AddReceivable(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req ReceivableRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.contacts.AddReceivable(c.Request.Context(), tenantID, id, crm.ReceivableRequest{
		QuotationRef: req.QuotationRef,
		TotalAmount:  req.TotalAmount,
		DueDate:      req.DueDate.Ptr(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// RecordPayment godoc
// @Summary  Collect money against a receivable. Books an Income row.
// @Router   /contacts/{id}/receivables/{entryId}/payments [post]
func (h *ContactHandler) RecordPayment(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.contacts.RecordReceivablePayment(c.Request.Context(), tenantID, id, c.Param("entryId"), crm.PaymentRequest{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// MarkReceivableOverdue godoc
// @Summary  Flag a receivable as overdue
// @Router   /contacts/{id}/receivables/{entryId}/overdue [post]
func (h *ContactHandler) MarkReceivableOverdue(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	contact, err := h.contacts.MarkReceivableOverdue(c.Request.Context(), tenantID, id, c.Param("entryId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// RemoveReceivable godoc
// @Summary  Drop a receivable from a contact
// @Router   /contacts/{id}/receivables/{entryId} [delete]
func (h *ContactHandler) RemoveReceivable(c *gin.Context) {
	tenantID, id, ok := h.target(c)
	if !ok {
		return
	}

	contact, err := h.contacts.RemoveReceivable(c.Request.Context(), tenantID, id, c.Param("entryId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

func (h *ContactHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return tenantID, id, ok
}
