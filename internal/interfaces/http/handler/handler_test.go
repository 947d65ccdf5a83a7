package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	activityapp "github.com/agency/backoffice/internal/application/activity"
	crmapp "github.com/agency/backoffice/internal/application/crm"
	ledgerapp "github.com/agency/backoffice/internal/application/ledger"
	"github.com/agency/backoffice/internal/domain/activity"
	"github.com/agency/backoffice/internal/domain/crm"
	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/interfaces/http/dto"
	"github.com/agency/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestEngine returns an engine that behaves as if JWTAuth had accepted
// a token for tenantID. uuid.Nil leaves the request unauthenticated.
func newTestEngine(tenantID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if tenantID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTTenantIDKey, tenantID)
			c.Next()
		})
	}
	return r
}

func perform(t *testing.T, r http.Handler, method, target string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func decimalField(t *testing.T, m map[string]any, key string) decimal.Decimal {
	t.Helper()
	s, ok := m[key].(string)
	require.True(t, ok, "%s is %T", key, m[key])
	return decimal.RequireFromString(s)
}

func newIncome(t *testing.T, tenantID uuid.UUID, number string, amount int64, status ledger.TransactionStatus) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewIncome(tenantID, number, ledger.TransactionDetails{
		Amount:        decimal.NewFromInt(amount),
		Date:          time.Now().AddDate(0, 0, -1),
		Status:        status,
		PaymentMethod: ledger.PaymentMethodCash,
		Description:   "Course fees",
	})
	require.NoError(t, err)
	tx.ClearDomainEvents()
	return tx
}

func newExpense(t *testing.T, tenantID uuid.UUID, amount int64) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewExpense(tenantID, "EXP-202406-00001", ledger.TransactionDetails{
		Amount:        decimal.NewFromInt(amount),
		Date:          time.Now().AddDate(0, 0, -2),
		PaymentMethod: ledger.PaymentMethodOnline,
		Description:   "Office rent",
	})
	require.NoError(t, err)
	tx.ClearDomainEvents()
	return tx
}

func newStudent(t *testing.T, tenantID uuid.UUID, receivable int64) (*crm.Contact, string) {
	t.Helper()
	c, err := crm.NewContact(tenantID, crm.ContactDetails{Type: crm.ContactTypeStudent, Name: "Priya Nair"})
	require.NoError(t, err)
	var entryID string
	if receivable > 0 {
		e, err := c.AddReceivable("QT-2024-17", decimal.NewFromInt(receivable), nil)
		require.NoError(t, err)
		entryID = e.ID
	}
	c.ClearDomainEvents()
	return c, entryID
}

func TestLedgerHandler_Summary(t *testing.T) {
	tenantID := uuid.New()
	txRepo := new(MockTransactionRepository)
	contactRepo := new(MockContactRepository)
	student, _ := newStudent(t, tenantID, 300)
	txRepo.On("ListAllForTenant", mock.Anything, tenantID).Return([]ledger.Transaction{
		*newIncome(t, tenantID, "INC-202406-00001", 1000, ledger.TransactionStatusPaid),
		*newExpense(t, tenantID, 200),
	}, nil)
	contactRepo.On("ListWithReceivables", mock.Anything, tenantID).Return([]crm.Contact{*student}, nil)

	h := NewLedgerHandler(ledgerapp.NewSummaryService(txRepo, contactRepo, nil, time.UTC, zap.NewNop()))
	r := newTestEngine(tenantID)
	r.GET("/ledger/summary", h.Summary)

	w, resp := perform(t, r, http.MethodGet, "/ledger/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, resp)
	assert.True(t, decimal.NewFromInt(1000).Equal(decimalField(t, data, "revenue")))
	assert.True(t, decimal.NewFromInt(800).Equal(decimalField(t, data, "net_profit")))
	assert.True(t, decimal.NewFromInt(1000).Equal(decimalField(t, data, "cash_in_hand")))
	assert.True(t, decimal.NewFromInt(-200).Equal(decimalField(t, data, "account_balance")))
	assert.True(t, decimal.NewFromInt(300).Equal(decimalField(t, data, "accounts_receivable")))
}

func TestLedgerHandler_Summary_RepositoryFailure(t *testing.T) {
	tenantID := uuid.New()
	txRepo := new(MockTransactionRepository)
	contactRepo := new(MockContactRepository)
	txRepo.On("ListAllForTenant", mock.Anything, tenantID).Return(nil, errors.New("connection refused"))
	contactRepo.On("ListWithReceivables", mock.Anything, tenantID).Return([]crm.Contact{}, nil)

	h := NewLedgerHandler(ledgerapp.NewSummaryService(txRepo, contactRepo, nil, time.UTC, zap.NewNop()))
	r := newTestEngine(tenantID)
	r.GET("/ledger/summary", h.Summary)

	w, resp := perform(t, r, http.MethodGet, "/ledger/summary", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection refused")
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestLedgerHandler_RecentActivity(t *testing.T) {
	tenantID := uuid.New()

	newRouter := func(t *testing.T) *gin.Engine {
		txRepo := new(MockTransactionRepository)
		contactRepo := new(MockContactRepository)
		student, _ := newStudent(t, tenantID, 300)
		txRepo.On("ListAllForTenant", mock.Anything, tenantID).Return([]ledger.Transaction{
			*newIncome(t, tenantID, "INC-202406-00001", 1000, ledger.TransactionStatusPaid),
			*newExpense(t, tenantID, 200),
		}, nil)
		contactRepo.On("ListWithReceivables", mock.Anything, tenantID).Return([]crm.Contact{*student}, nil)

		h := NewLedgerHandler(ledgerapp.NewSummaryService(txRepo, contactRepo, nil, time.UTC, zap.NewNop()))
		r := newTestEngine(tenantID)
		r.GET("/ledger/activity", h.RecentActivity)
		return r
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTypes  []string
		wantField  string
	}{
		{name: "all kinds", query: "", wantStatus: http.StatusOK, wantTypes: []string{"Income", "Expense", "Due"}},
		{name: "income only", query: "?type=Income", wantStatus: http.StatusOK, wantTypes: []string{"Income"}},
		{name: "due rows only", query: "?type=Due", wantStatus: http.StatusOK, wantTypes: []string{"Due"}},
		{name: "search", query: "?search=RENT", wantStatus: http.StatusOK, wantTypes: []string{"Expense"}},
		{name: "unknown type", query: "?type=Refund", wantStatus: http.StatusBadRequest, wantField: "type"},
		{name: "bad date", query: "?start_date=15-06-2024", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform(t, newRouter(t), http.MethodGet, "/ledger/activity"+tt.query, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				require.NotNil(t, resp.Error)
				if tt.wantField != "" {
					require.Len(t, resp.Error.Details, 1)
					assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
				}
				return
			}
			rows, ok := resp.Data.([]any)
			require.True(t, ok)
			types := make([]string, 0, len(rows))
			for _, row := range rows {
				types = append(types, row.(map[string]any)["type"].(string))
			}
			assert.ElementsMatch(t, tt.wantTypes, types)
		})
	}
}

func TestLedgerHandler_RequiresTenant(t *testing.T) {
	h := NewLedgerHandler(ledgerapp.NewSummaryService(new(MockTransactionRepository), new(MockContactRepository), nil, time.UTC, zap.NewNop()))
	r := newTestEngine(uuid.Nil)
	r.GET("/ledger/summary", h.Summary)

	w, resp := perform(t, r, http.MethodGet, "/ledger/summary", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}

func newTransactionRouter(tenantID uuid.UUID, repo *MockTransactionRepository) *gin.Engine {
	txService := ledgerapp.NewTransactionService(repo, nil, nil, zap.NewNop())
	h := NewTransactionHandler(txService, ledgerapp.NewAttachmentService(repo, nil, zap.NewNop()))
	r := newTestEngine(tenantID)
	r.GET("/transactions", h.List)
	r.POST("/transactions/invoices", h.CreateInvoice)
	r.POST("/transactions/transfers", h.CreateTransfer)
	r.GET("/transactions/:id", h.Get)
	r.DELETE("/transactions/:id", h.Delete)
	r.POST("/transactions/:id/pay", h.MarkPaid)
	return r
}

func TestTransactionHandler_CreateInvoice(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name       string
		body       any
		setup      func(repo *MockTransactionRepository)
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name: "valid",
			body: map[string]any{"amount": 1500, "date": "2024-06-15", "customer_name": "Rahul Mehta", "payment_method": "Online"},
			setup: func(repo *MockTransactionRepository) {
				repo.On("GenerateNumber", mock.Anything, tenantID, ledger.TransactionTypeInvoice).Return("INV-202406-00001", nil)
				repo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero amount",
			body:       map[string]any{"amount": 0, "date": "2024-06-15", "customer_name": "Rahul Mehta"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantField:  "amount",
		},
		{
			name:       "missing date",
			body:       map[string]any{"amount": 10, "customer_name": "Rahul Mehta"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantField:  "date",
		},
		{
			name:       "unknown payment method",
			body:       map[string]any{"amount": 10, "date": "2024-06-15", "customer_name": "Rahul Mehta", "payment_method": "Cheque"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantField:  "payment_method",
		},
		{
			name:       "malformed json",
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name: "invoice without customer",
			body: map[string]any{"amount": 10, "date": "2024-06-15"},
			setup: func(repo *MockTransactionRepository) {
				repo.On("GenerateNumber", mock.Anything, tenantID, ledger.TransactionTypeInvoice).Return("INV-202406-00001", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTransactionRepository)
			if tt.setup != nil {
				tt.setup(repo)
			}
			w, resp := perform(t, newTransactionRouter(tenantID, repo), http.MethodPost, "/transactions/invoices", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				if tt.wantField != "" {
					require.NotEmpty(t, resp.Error.Details)
					assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
				}
				repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			data := dataMap(t, resp)
			assert.Equal(t, "INV-202406-00001", data["invoice_number"])
			assert.Equal(t, "Invoice", data["type"])
			assert.Equal(t, "Pending", data["status"])
			assert.Equal(t, "Online", data["payment_method"])
			repo.AssertExpectations(t)
		})
	}
}

func TestTransactionHandler_CreateTransfer(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockTransactionRepository)
	repo.On("GenerateNumber", mock.Anything, tenantID, ledger.TransactionTypeTransfer).Return("TRF-202406-00001", nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	r := newTransactionRouter(tenantID, repo)

	w, resp := perform(t, r, http.MethodPost, "/transactions/transfers", map[string]any{
		"amount": "250.50", "date": "2024-06-15", "from": "Cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataMap(t, resp)
	assert.Equal(t, "Transfer", data["type"])
	assert.True(t, decimal.RequireFromString("250.50").Equal(decimalField(t, data, "amount")))

	w, resp = perform(t, r, http.MethodPost, "/transactions/transfers", map[string]any{
		"amount": 10, "date": "2024-06-15", "from": "Card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestTransactionHandler_Get(t *testing.T) {
	tenantID := uuid.New()
	tx := newIncome(t, tenantID, "INC-202406-00001", 500, ledger.TransactionStatusPaid)
	missing := uuid.New()
	broken := uuid.New()

	repo := new(MockTransactionRepository)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, broken).Return(nil, errors.New("driver: bad connection"))
	r := newTransactionRouter(tenantID, repo)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{name: "found", id: tx.ID.String(), wantStatus: http.StatusOK},
		{name: "not found", id: missing.String(), wantStatus: http.StatusNotFound, wantCode: dto.ErrCodeNotFound, wantReason: "TRANSACTION_NOT_FOUND"},
		{name: "malformed id", id: "abc", wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeBadRequest},
		{name: "storage failure", id: broken.String(), wantStatus: http.StatusInternalServerError, wantCode: dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform(t, r, http.MethodGet, "/transactions/"+tt.id, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode == "" {
				assert.Equal(t, "INC-202406-00001", dataMap(t, resp)["invoice_number"])
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantReason, resp.Error.Reason)
		})
	}
}

func TestTransactionHandler_List(t *testing.T) {
	tenantID := uuid.New()
	contactID := uuid.New()
	repo := new(MockTransactionRepository)
	matches := mock.MatchedBy(func(f ledger.TransactionFilter) bool {
		return f.Page == 2 && f.PageSize == 1 &&
			f.Type != nil && *f.Type == ledger.TransactionTypeExpense &&
			f.ContactID != nil && *f.ContactID == contactID &&
			f.ToDate != nil && f.ToDate.Hour() == 23
	})
	repo.On("FindAllForTenant", mock.Anything, tenantID, matches).Return([]ledger.Transaction{*newExpense(t, tenantID, 75)}, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, matches).Return(int64(3), nil)
	r := newTransactionRouter(tenantID, repo)

	w, resp := perform(t, r, http.MethodGet,
		"/transactions?page=2&page_size=1&type=Expense&contact_id="+contactID.String()+"&to=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Len(t, resp.Data, 1)

	w, resp = perform(t, r, http.MethodGet, "/transactions?contact_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "contact_id", resp.Error.Details[0].Field)
}

func TestTransactionHandler_DeleteAndPay(t *testing.T) {
	tenantID := uuid.New()

	t.Run("delete", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		tx := newExpense(t, tenantID, 90)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		repo.On("DeleteForTenant", mock.Anything, tenantID, tx.ID).Return(nil)

		w, _ := perform(t, newTransactionRouter(tenantID, repo), http.MethodDelete, "/transactions/"+tx.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("pay pending income", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		tx := newIncome(t, tenantID, "INC-202406-00002", 300, ledger.TransactionStatusPending)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		repo.On("SaveWithLock", mock.Anything, tx).Return(nil)

		w, resp := perform(t, newTransactionRouter(tenantID, repo), http.MethodPost, "/transactions/"+tx.ID.String()+"/pay",
			map[string]any{"payment_method": "Online"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataMap(t, resp)
		assert.Equal(t, "Paid", data["status"])
		assert.Equal(t, "Online", data["payment_method"])
	})

	t.Run("pay twice", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		tx := newIncome(t, tenantID, "INC-202406-00003", 300, ledger.TransactionStatusPaid)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)

		w, resp := perform(t, newTransactionRouter(tenantID, repo), http.MethodPost, "/transactions/"+tx.ID.String()+"/pay", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})
}

func newContactRouter(tenantID uuid.UUID, contacts *MockContactRepository, txs *MockTransactionRepository) *gin.Engine {
	txService := ledgerapp.NewTransactionService(txs, nil, nil, zap.NewNop())
	h := NewContactHandler(crmapp.NewContactService(contacts, txService, nil, zap.NewNop()))
	r := newTestEngine(tenantID)
	r.POST("/contacts", h.Create)
	r.GET("/contacts/:id", h.Get)
	r.PUT("/contacts/:id", h.Update)
	r.POST("/contacts/:id/receivables", h.AddReceivable)
	r.POST("/contacts/:id/receivables/:entryId/payments", h.RecordPayment)
	r.DELETE("/contacts/:id/receivables/:entryId", h.RemoveReceivable)
	return r
}

func TestContactHandler_Create(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantField  string
	}{
		{name: "student", body: map[string]any{"type": "Student", "name": "Priya Nair", "email": "priya@example.com"}, wantStatus: http.StatusCreated},
		{name: "unknown type", body: map[string]any{"type": "Partner", "name": "Acme"}, wantStatus: http.StatusBadRequest, wantField: "type"},
		{name: "missing name", body: map[string]any{"type": "Vendor"}, wantStatus: http.StatusBadRequest, wantField: "name"},
		{name: "bad email", body: map[string]any{"type": "Lead", "name": "Sam", "email": "sam@"}, wantStatus: http.StatusBadRequest, wantField: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := new(MockContactRepository)
			contacts.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(nil)

			w, resp := perform(t, newContactRouter(tenantID, contacts, new(MockTransactionRepository)), http.MethodPost, "/contacts", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantField != "" {
				require.NotNil(t, resp.Error)
				require.NotEmpty(t, resp.Error.Details)
				assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
				contacts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			data := dataMap(t, resp)
			assert.Equal(t, "Student", data["type"])
			assert.Equal(t, "Priya Nair", data["name"])
		})
	}
}

func TestContactHandler_UpdateVersionConflict(t *testing.T) {
	tenantID := uuid.New()
	student, _ := newStudent(t, tenantID, 0)
	contacts := new(MockContactRepository)
	contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)

	w, resp := perform(t, newContactRouter(tenantID, contacts, new(MockTransactionRepository)), http.MethodPut,
		"/contacts/"+student.ID.String(),
		map[string]any{"type": "Student", "name": "Priya N.", "version": student.Version + 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeConcurrencyConflict, resp.Error.Code)
	contacts.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestContactHandler_Receivables(t *testing.T) {
	tenantID := uuid.New()

	t.Run("open receivable", func(t *testing.T) {
		student, _ := newStudent(t, tenantID, 0)
		contacts := new(MockContactRepository)
		contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)
		contacts.On("SaveWithLock", mock.Anything, student).Return(nil)

		w, resp := perform(t, newContactRouter(tenantID, contacts, new(MockTransactionRepository)), http.MethodPost,
			"/contacts/"+student.ID.String()+"/receivables",
			map[string]any{"quotation_ref": "QT-2024-20", "total_amount": 1200, "due_date": "2024-07-01"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := dataMap(t, resp)
		assert.Equal(t, "QT-2024-20", data["quotation_ref"])
		assert.True(t, decimal.NewFromInt(1200).Equal(decimalField(t, data, "remaining_amount")))
	})

	t.Run("duplicate quotation", func(t *testing.T) {
		student, _ := newStudent(t, tenantID, 300)
		contacts := new(MockContactRepository)
		contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)

		w, resp := perform(t, newContactRouter(tenantID, contacts, new(MockTransactionRepository)), http.MethodPost,
			"/contacts/"+student.ID.String()+"/receivables",
			map[string]any{"quotation_ref": "QT-2024-17", "total_amount": 50})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeDuplicateReceivable, resp.Error.Code)
	})

	t.Run("payment books income", func(t *testing.T) {
		student, entryID := newStudent(t, tenantID, 300)
		contacts := new(MockContactRepository)
		txs := new(MockTransactionRepository)
		contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)
		contacts.On("SaveWithLock", mock.Anything, student).Return(nil)
		txs.On("GenerateNumber", mock.Anything, tenantID, ledger.TransactionTypeIncome).Return("INC-202406-00009", nil)
		txs.On("Save", mock.Anything, mock.MatchedBy(func(tx *ledger.Transaction) bool {
			return tx.Status == ledger.TransactionStatusPaid &&
				tx.PaymentMethod == ledger.PaymentMethodOnline &&
				tx.Amount.Equal(decimal.NewFromInt(100))
		})).Return(nil)

		w, resp := perform(t, newContactRouter(tenantID, contacts, txs), http.MethodPost,
			"/contacts/"+student.ID.String()+"/receivables/"+entryID+"/payments",
			map[string]any{"amount": 100, "payment_method": "Online"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := dataMap(t, resp)
		assert.Equal(t, "INC-202406-00009", data["invoice_number"])
		receivable := data["receivable"].(map[string]any)
		assert.True(t, decimal.NewFromInt(200).Equal(decimalField(t, receivable, "remaining_amount")))
		txs.AssertExpectations(t)
	})

	t.Run("overpayment", func(t *testing.T) {
		student, entryID := newStudent(t, tenantID, 300)
		contacts := new(MockContactRepository)
		txs := new(MockTransactionRepository)
		contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)

		w, resp := perform(t, newContactRouter(tenantID, contacts, txs), http.MethodPost,
			"/contacts/"+student.ID.String()+"/receivables/"+entryID+"/payments",
			map[string]any{"amount": 301})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeReceivableOverpaid, resp.Error.Code)
		txs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("remove unknown entry", func(t *testing.T) {
		student, _ := newStudent(t, tenantID, 300)
		contacts := new(MockContactRepository)
		contacts.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)

		w, resp := perform(t, newContactRouter(tenantID, contacts, new(MockTransactionRepository)), http.MethodDelete,
			"/contacts/"+student.ID.String()+"/receivables/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestActivityLogHandler_List(t *testing.T) {
	tenantID := uuid.New()
	actor := uuid.New()
	repo := new(MockActivityRepository)
	logs := []activity.Log{{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    &actor,
		Action:     "ledger.transaction.created",
		EntityType: "Transaction",
		EntityID:   uuid.New(),
		Summary:    "Created Income INC-202406-00001",
		OccurredAt: time.Now(),
	}}
	matches := mock.MatchedBy(func(f activity.Filter) bool {
		return f.ActorID != nil && *f.ActorID == actor && f.OrderDir == "asc"
	})
	repo.On("FindAllForTenant", mock.Anything, tenantID, matches).Return(logs, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, matches).Return(int64(1), nil)

	h := NewActivityLogHandler(activityapp.NewService(repo))
	r := newTestEngine(tenantID)
	r.GET("/activity-logs", h.List)

	w, resp := perform(t, r, http.MethodGet, "/activity-logs?order=oldest&actor_id="+actor.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.PageSize)

	w, _ = perform(t, r, http.MethodGet, "/activity-logs?entity_type=Invoice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestSystemHandler(t *testing.T) {
	tests := []struct {
		name       string
		pinger     stubPinger
		wantStatus int
		wantState  string
	}{
		{name: "healthy", pinger: stubPinger{}, wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "database down", pinger: stubPinger{err: errors.New("dial tcp: refused")}, wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("backoffice", "1.2.0", tt.pinger)
			r := newTestEngine(uuid.Nil)
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
		})
	}

	h := NewSystemHandler("backoffice", "1.2.0", stubPinger{})
	r := newTestEngine(uuid.Nil)
	r.GET("/system/info", h.Info)
	w, resp := perform(t, r, http.MethodGet, "/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "backoffice", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestEndOfDay(t *testing.T) {
	assert.Nil(t, endOfDay(nil))

	midnight := &dto.Date{Time: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)}
	got := endOfDay(midnight)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC), *got)

	exact := &dto.Date{Time: time.Date(2024, 6, 30, 9, 30, 0, 0, time.UTC)}
	assert.Equal(t, exact.Time, *endOfDay(exact))
}
