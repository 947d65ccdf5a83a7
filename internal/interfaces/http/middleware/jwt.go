package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/agency/backoffice/internal/infrastructure/auth"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/agency/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenValidator parses access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether validated claims were revoked since
// they were issued
type RevocationChecker interface {
	CheckToken(ctx context.Context, claims *auth.Claims) error
}

// JWTAuth authenticates the bearer token and stores its claims on the gin
// context. The actor, tenant and user are also put on the request context
// so services and log lines pick them up.
func JWTAuth(tokens TokenValidator, revocations RevocationChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		userID, errUser := claims.UserUUID()
		tenantID, errTenant := claims.TenantUUID()
		if errUser != nil || errTenant != nil {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		if revocations != nil {
			if err := revocations.CheckToken(c.Request.Context(), claims); err != nil {
				var domainErr *shared.DomainError
				if errors.As(err, &domainErr) {
					abortUnauthorized(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
					return
				}
				// Blacklist outages fail closed
				logger.L(c.Request.Context()).Error("Token revocation check failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Authentication is temporarily unavailable", GetRequestID(c)))
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, userID)
		c.Set(JWTTenantIDKey, tenantID)
		c.Set(JWTRoleKey, claims.Role)

		ctx := shared.WithActor(c.Request.Context(), userID)
		ctx = logger.WithUserID(ctx, claims.UserID)
		ctx = logger.WithTenantID(ctx, claims.TenantID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves the claims stored by JWTAuth
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidValue(c, JWTUserIDKey)
}

// GetTenantID returns the authenticated user's tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return uuidValue(c, JWTTenantIDKey)
}

// GetRole returns the authenticated user's role
func GetRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

func uuidValue(c *gin.Context, key string) (uuid.UUID, bool) {
	v, ok := c.Get(key)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
