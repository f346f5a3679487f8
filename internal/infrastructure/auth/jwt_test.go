package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32-chars!!",
		RefreshSecret:          "test-refresh-secret-at-least-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "invoice-portal-test",
		MaxRefreshCount:        3,
	})
}

func portalTokenInput(role string) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID: uuid.New(),
		Email:  "staff@example.com",
		Role:   role,
	}
}

func companyTokenInput() (auth.GenerateTokenInput, uuid.UUID) {
	companyID := uuid.New()
	return auth.GenerateTokenInput{
		UserID:    uuid.New(),
		Email:     "user@customer.example.com",
		Role:      "company",
		CompanyID: &companyID,
	}, companyID
}

func TestGenerateTokenPair(t *testing.T) {
	service := newTestJWTService()

	t.Run("portal user without company", func(t *testing.T) {
		input := portalTokenInput("staff")
		pair, err := service.GenerateTokenPair(input)
		require.NoError(t, err)
		require.NotNil(t, pair)

		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.True(t, pair.AccessTokenExpiresAt.Before(pair.RefreshTokenExpiresAt))

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.Email, claims.Email)
		assert.Equal(t, "staff", claims.Role)
		assert.Empty(t, claims.CompanyID)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
	})

	t.Run("company user carries company id", func(t *testing.T) {
		input, companyID := companyTokenInput()
		pair, err := service.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, companyID.String(), claims.CompanyID)

		refreshClaims, err := service.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, companyID.String(), refreshClaims.CompanyID)
		assert.Equal(t, "company", refreshClaims.Role)
	})
}

func TestValidateAccessToken(t *testing.T) {
	service := newTestJWTService()

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects refresh token as access token", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("admin"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects access token as refresh token", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("admin"))
		require.NoError(t, err)

		_, err = service.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-access-secret-at-least-32-chars!!",
			AccessTokenExpiration:  -1 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "invoice-portal-test",
		})

		pair, err := expired.GenerateTokenPair(portalTokenInput("staff"))
		require.NoError(t, err)

		_, err = expired.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{
			Secret:                 "completely-different-secret-32-chars!!",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "invoice-portal-test",
		})

		pair, err := other.GenerateTokenPair(portalTokenInput("staff"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	service := newTestJWTService()

	t.Run("issues new pair and increments refresh count", func(t *testing.T) {
		input, companyID := companyTokenInput()
		pair, err := service.GenerateTokenPair(input)
		require.NoError(t, err)

		refreshed, err := service.RefreshTokenPair(pair.RefreshToken, input.Email)
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)

		claims, err := service.ValidateRefreshToken(refreshed.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, claims.RefreshCount)
		assert.Equal(t, companyID.String(), claims.CompanyID)

		accessClaims, err := service.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), accessClaims.UserID)
		assert.Equal(t, input.Email, accessClaims.Email)
	})

	t.Run("rejects access token", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("staff"))
		require.NoError(t, err)

		_, err = service.RefreshTokenPair(pair.AccessToken, "staff@example.com")
		assert.Error(t, err)
	})

	t.Run("fails after max refresh count", func(t *testing.T) {
		input := portalTokenInput("staff")
		pair, err := service.GenerateTokenPair(input)
		require.NoError(t, err)

		current := pair
		var err2 error
		for i := 0; i < 3; i++ {
			current, err2 = service.RefreshTokenPair(current.RefreshToken, input.Email)
			require.NoError(t, err2)
		}

		_, err = service.RefreshTokenPair(current.RefreshToken, input.Email)
		assert.ErrorIs(t, err, auth.ErrMaxRefreshExceeded)
	})
}

func TestClaimsHelpers(t *testing.T) {
	service := newTestJWTService()

	t.Run("GetUserUUID and GetCompanyUUID", func(t *testing.T) {
		input, companyID := companyTokenInput()
		pair, err := service.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		userID, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, userID)

		got, err := claims.GetCompanyUUID()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, companyID, *got)
	})

	t.Run("GetCompanyUUID is nil for portal users", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("admin"))
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		got, err := claims.GetCompanyUUID()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("HasRole", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("staff"))
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.True(t, claims.HasRole("staff"))
		assert.True(t, claims.HasRole("admin", "staff"))
		assert.False(t, claims.HasRole("admin"))
		assert.False(t, claims.HasRole())
	})

	t.Run("GetRemainingTTL", func(t *testing.T) {
		pair, err := service.GenerateTokenPair(portalTokenInput("staff"))
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		ttl := claims.GetRemainingTTL()
		assert.Greater(t, ttl, 14*time.Minute)
		assert.LessOrEqual(t, ttl, 15*time.Minute)
	})
}

func TestExpirationGetters(t *testing.T) {
	service := newTestJWTService()
	assert.Equal(t, 15*time.Minute, service.GetAccessTokenExpiration())
	assert.Equal(t, 7*24*time.Hour, service.GetRefreshTokenExpiration())
}
