package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agency/backoffice/internal/domain/identity"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/auth"
	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/agency/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		Issuer:                 "backoffice-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
	})
}

func issue(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, auth.Subject) {
	t.Helper()
	sub := auth.Subject{TenantID: uuid.New(), UserID: uuid.New(), Username: "desk", Role: role.String()}
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	return pair, sub
}

type revocationFunc func(ctx context.Context, claims *auth.Claims) error

func (f revocationFunc) CheckToken(ctx context.Context, claims *auth.Claims) error {
	return f(ctx, claims)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService()
	pair, sub := issue(t, svc, identity.RoleAccountant)

	tests := []struct {
		name        string
		header      string
		revocations RevocationChecker
		wantStatus  int
		wantCode    string
	}{
		{"valid token", "Bearer " + pair.AccessToken, nil, http.StatusOK, ""},
		{"missing header", "", nil, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"not bearer", "Basic abc", nil, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", nil, http.StatusUnauthorized, dto.ErrCodeTokenInvalid},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, nil, http.StatusUnauthorized, dto.ErrCodeTokenInvalid},
		{
			name:   "revoked token",
			header: "Bearer " + pair.AccessToken,
			revocations: revocationFunc(func(context.Context, *auth.Claims) error {
				return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
			}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrCodeTokenRevoked,
		},
		{
			name:   "blacklist unavailable",
			header: "Bearer " + pair.AccessToken,
			revocations: revocationFunc(func(context.Context, *auth.Claims) error {
				return errors.New("redis: connection refused")
			}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID(), JWTAuth(svc, tt.revocations, zap.NewNop()))
			router.GET("/me", func(c *gin.Context) {
				userID, ok := GetUserID(c)
				assert.True(t, ok)
				assert.Equal(t, sub.UserID, userID)
				tenantID, ok := GetTenantID(c)
				assert.True(t, ok)
				assert.Equal(t, sub.TenantID, tenantID)
				assert.Equal(t, "accountant", GetRole(c))

				actor, ok := shared.ActorFromContext(c.Request.Context())
				assert.True(t, ok)
				assert.Equal(t, sub.UserID, actor)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				resp := decode(t, w)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService()

	tests := []struct {
		name       string
		role       identity.Role
		method     string
		wantStatus int
	}{
		{"admin may write", identity.RoleAdmin, http.MethodPost, http.StatusOK},
		{"accountant may write", identity.RoleAccountant, http.MethodPost, http.StatusOK},
		{"staff may not write", identity.RoleStaff, http.MethodPost, http.StatusForbidden},
		{"staff may read", identity.RoleStaff, http.MethodGet, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, _ := issue(t, svc, tt.role)
			router := gin.New()
			router.Use(JWTAuth(svc, nil, zap.NewNop()),
				WriteGuard(RequireRole(identity.RoleAdmin, identity.RoleAccountant)))
			router.GET("/transactions", func(c *gin.Context) { c.Status(http.StatusOK) })
			router.POST("/transactions", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/transactions", nil)
			req.Header.Set(AuthHeaderKey, "Bearer "+pair.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("without authentication", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", RequireRole(identity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCORS(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://office.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	router := gin.New()
	router.Use(CORS(cfg))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://office.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "https://office.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://office.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestRequestIDAndSecure(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Secure(true))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("generates an ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 32)
		assert.Equal(t, id, w.Body.String())
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("keeps the client ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("replaces an oversized ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 32)
	})
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(16))
	router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"description":"far too long for the limit"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, remaining := limiter.Allow("10.0.0.1")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = limiter.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = limiter.Allow("10.0.0.1")
	assert.False(t, ok)

	ok, _ = limiter.Allow("10.0.0.2")
	assert.True(t, ok, "limits are per key")

	now = now.Add(time.Minute)
	ok, _ = limiter.Allow("10.0.0.1")
	assert.True(t, ok, "a new window resets the count")

	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(ctx, 1, time.Minute)))
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, decode(t, w).Error.Code)
}

type amountForm struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
	Method string          `json:"payment_method" binding:"required,oneof=Cash Online"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&amountForm{Amount: decimal.Zero, Method: "Cheque"})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, dto.ValidationDetail{Field: "amount", Message: "Must be greater than 0"}, details[0])
	assert.Equal(t, dto.ValidationDetail{Field: "payment_method", Message: "Must be one of: Cash Online"}, details[1])

	assert.Nil(t, ValidationDetails(errors.New("plain")))
}
