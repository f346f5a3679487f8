package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
)

const (
	staffPassword   = "StaffPass123"
	companyPassword = "CompanyPass123"
)

// seedStaff stores an active staff account directly through the repository.
func seedStaff(t *testing.T, s *PortalServer, email string) *identity.User {
	t.Helper()

	user, err := identity.NewPortalUser(email, staffPassword, identity.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, s.UserRepo.Save(context.Background(), user))
	return user
}

// seedCompanyUser stores a company plus an active account bound to it.
func seedCompanyUser(t *testing.T, s *PortalServer, code, email string) (*directory.Company, *identity.User) {
	t.Helper()

	company, err := directory.NewCompany(code, "Firma "+code)
	require.NoError(t, err)
	require.NoError(t, s.CompanyRepo.Save(context.Background(), company))

	user, err := identity.NewCompanyUser(company.ID, email, companyPassword)
	require.NoError(t, err)
	require.NoError(t, s.UserRepo.Save(context.Background(), user))
	return company, user
}

func TestAuthAPI_LoginAndMe(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "staff@portal.test")

	token, _ := s.login(t, "staff@portal.test", staffPassword)

	w := s.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "staff@portal.test", resp.Data.Email)
	assert.Equal(t, "staff", resp.Data.Role)
}

func TestAuthAPI_InvalidCredentials(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "staff@portal.test")

	w := s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "staff@portal.test",
		"password": "wrong-password-1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthAPI_LockoutAfterRepeatedFailures(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "locked@portal.test")

	// Default policy locks after 5 failed attempts.
	for i := 0; i < 4; i++ {
		w := s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "locked@portal.test",
			"password": "wrong-password-1",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "locked@portal.test",
		"password": "wrong-password-1",
	})
	require.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_LOCKED")

	// The correct password no longer works while the lock holds.
	w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "locked@portal.test",
		"password": staffPassword,
	})
	require.Equal(t, http.StatusLocked, w.Code)
}

func TestAuthAPI_RefreshRotatesTokens(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "staff@portal.test")

	access, refresh := s.login(t, "staff@portal.test", staffPassword)

	w := s.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)

	// Both the old and new access tokens authenticate until expiry.
	for _, token := range []string{access, resp.Data.AccessToken} {
		w := s.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuthAPI_LogoutRevokesToken(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "staff@portal.test")

	token, _ := s.login(t, "staff@portal.test", staffPassword)

	w := s.request(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAPI_MissingTokenRejected(t *testing.T) {
	s := newPortalServer(t)

	w := s.request(t, http.MethodGet, "/api/v1/invoices", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthAPI_CompanyRoleCannotManageUsers(t *testing.T) {
	s := newPortalServer(t)
	seedCompanyUser(t, s, "K-1001", "buyer@firma.test")

	token, _ := s.login(t, "buyer@firma.test", companyPassword)

	w := s.request(t, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRegistrationAPI_SubmitAndApprove(t *testing.T) {
	s := newPortalServer(t)
	seedStaff(t, s, "staff@portal.test")

	// Submission needs no authentication.
	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"company_name": "Neue Firma GmbH",
		"contact_name": "Erika Muster",
		"email":        "erika@neuefirma.test",
		"phone":        "+49 170 1234567",
		"message":      "We buy through EDI channel 42.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	token, _ := s.login(t, "staff@portal.test", staffPassword)

	w = s.request(t, http.MethodGet, "/api/v1/registrations/pending-count", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = s.request(t, http.MethodPost, "/api/v1/registrations/"+created.Data.ID+"/approve", token, map[string]string{
		"company_code": "K-7777",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Approval created the company account.
	company, err := s.CompanyRepo.FindByCode(context.Background(), "K-7777")
	require.NoError(t, err)
	assert.Equal(t, "Neue Firma GmbH", company.Name)
}
