package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32-chars!!",
		RefreshSecret:          "test-refresh-secret-at-least-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "invoice-portal-test",
		MaxRefreshCount:        3,
	})
}

type stubBlacklist struct {
	revokedJTIs map[string]bool
	failing     bool
}

func (b *stubBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if b.revokedJTIs == nil {
		b.revokedJTIs = make(map[string]bool)
	}
	b.revokedJTIs[jti] = true
	return nil
}

func (b *stubBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if b.failing {
		return false, assert.AnError
	}
	return b.revokedJTIs[jti], nil
}

func (b *stubBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	return nil
}

func (b *stubBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	if b.failing {
		return false, assert.AnError
	}
	return false, nil
}

func jwtTestRouter(cfg JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWTAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetJWTUserID(c),
			"role":    GetJWTRole(c),
			"company": GetJWTCompanyID(c),
		})
	})
	return router
}

func issueCompanyToken(t *testing.T, svc *auth.JWTService) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	companyID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:    uuid.New(),
		Email:     "buchhaltung@kunde.example.de",
		Role:      "company",
		CompanyID: &companyID,
	})
	require.NoError(t, err)
	return pair, companyID
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := testJWTService()
	pair, companyID := issueCompanyToken(t, svc)
	router := jwtTestRouter(JWTConfig{JWTService: svc})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), companyID.String())
	assert.Contains(t, rec.Body.String(), `"role":"company"`)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := jwtTestRouter(JWTConfig{JWTService: testJWTService()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	router := jwtTestRouter(JWTConfig{JWTService: testJWTService()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_RefreshTokenRejectedOnAccessRoute(t *testing.T) {
	svc := testJWTService()
	pair, _ := issueCompanyToken(t, svc)
	router := jwtTestRouter(JWTConfig{JWTService: svc})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.RefreshToken)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := testJWTService()
	pair, _ := issueCompanyToken(t, svc)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := &stubBlacklist{}
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	router := jwtTestRouter(JWTConfig{JWTService: svc, Blacklist: blacklist})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestJWTAuth_BlacklistFailureFailsOpen(t *testing.T) {
	svc := testJWTService()
	pair, _ := issueCompanyToken(t, svc)
	router := jwtTestRouter(JWTConfig{JWTService: svc, Blacklist: &stubBlacklist{failing: true}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
