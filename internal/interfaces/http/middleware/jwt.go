package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/logger"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTUserIDKey    = "jwt_user_id"
	JWTEmailKey     = "jwt_email"
	JWTRoleKey      = "jwt_role"
	JWTCompanyIDKey = "jwt_company_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// JWTConfig holds configuration for the authentication middleware
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; without it revoked tokens stay valid until expiry
	Blacklist auth.TokenBlacklist
	// SkipPaths are exact paths served without authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth validates the bearer token and stores the claims in the context.
// Routes registered behind this middleware can rely on GetClaims returning
// a non-nil value, except for the configured skip paths.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(header, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("token validation failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path))
			}
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
			} else {
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		if cfg.Blacklist != nil {
			if revoked := checkRevoked(c, cfg, claims); revoked {
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTEmailKey, claims.Email)
		c.Set(JWTRoleKey, claims.Role)
		c.Set(JWTCompanyIDKey, claims.CompanyID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		if claims.CompanyID != "" {
			ctx, _ = logger.WithCompanyID(ctx, logger.FromContext(ctx), claims.CompanyID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// checkRevoked aborts the request when the token or the user's whole
// session set has been revoked. Blacklist lookup failures fail open so a
// Redis outage does not take authentication down with it.
func checkRevoked(c *gin.Context, cfg JWTConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		blacklisted, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("token blacklist check failed",
					zap.String("jti", claims.ID), zap.Error(err))
			}
		} else if blacklisted {
			abortUnauthorized(c, "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.Blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("user token invalidation check failed",
					zap.String("user_id", claims.UserID), zap.Error(err))
			}
		} else if invalidated {
			abortUnauthorized(c, "Session has been invalidated")
			return true
		}
	}

	return false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetClaims returns the validated claims, nil on unauthenticated routes
func GetClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetJWTUserID returns the authenticated user's ID, empty when anonymous
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole returns the authenticated user's role, empty when anonymous
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

// GetJWTCompanyID returns the company binding of a company token, empty
// for staff and admin tokens
func GetJWTCompanyID(c *gin.Context) string {
	return c.GetString(JWTCompanyIDKey)
}
