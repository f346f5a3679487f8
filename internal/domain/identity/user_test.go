package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with valid email and password", func(t *testing.T) {
		user, err := NewUser("test@example.com", "Password123", RoleStaff)

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email)
		assert.NotEmpty(t, user.PasswordHash)
		assert.Equal(t, RoleStaff, user.Role)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.Nil(t, user.CompanyID)
		assert.NotNil(t, user.PasswordChangedAt)

		// Should have domain event
		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		user, err := NewUser("Test@Example.COM", "Password123", RoleStaff)

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
	})

	t.Run("trims email whitespace", func(t *testing.T) {
		user, err := NewUser("  test@example.com  ", "Password123", RoleStaff)

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
	})

	t.Run("fails with empty email", func(t *testing.T) {
		_, err := NewUser("", "Password123", RoleStaff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with invalid email format", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Password123", RoleStaff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})

	t.Run("fails with empty password", func(t *testing.T) {
		_, err := NewUser("test@example.com", "", RoleStaff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser("test@example.com", "Pass1", RoleStaff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("fails with password without numbers", func(t *testing.T) {
		_, err := NewUser("test@example.com", "PasswordOnly", RoleStaff)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "letter and one number")
	})

	t.Run("fails with invalid role", func(t *testing.T) {
		_, err := NewUser("test@example.com", "Password123", Role("superuser"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Role must be one of")
	})
}

func TestNewCompanyUser(t *testing.T) {
	t.Run("creates active user bound to company", func(t *testing.T) {
		companyID := uuid.New()
		user, err := NewCompanyUser(companyID, "buyer@acme.test", "Password123")

		require.NoError(t, err)
		assert.Equal(t, RoleCompany, user.Role)
		require.NotNil(t, user.CompanyID)
		assert.Equal(t, companyID, *user.CompanyID)
		assert.Equal(t, UserStatusActive, user.Status)
	})

	t.Run("fails with nil company", func(t *testing.T) {
		_, err := NewCompanyUser(uuid.Nil, "buyer@acme.test", "Password123")

		assert.Error(t, err)
	})
}

func TestNewPortalUser(t *testing.T) {
	t.Run("creates active staff user without company", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)

		require.NoError(t, err)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.Nil(t, user.CompanyID)
	})

	t.Run("rejects company role", func(t *testing.T) {
		_, err := NewPortalUser("staff@portal.test", "Password123", RoleCompany)

		assert.Error(t, err)
	})
}

func TestUserVerifyPassword(t *testing.T) {
	user, err := NewUser("test@example.com", "Password123", RoleStaff)
	require.NoError(t, err)

	t.Run("verifies correct password", func(t *testing.T) {
		assert.True(t, user.VerifyPassword("Password123"))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		assert.False(t, user.VerifyPassword("WrongPassword1"))
	})
}

func TestUserChangePassword(t *testing.T) {
	t.Run("changes password with correct old password", func(t *testing.T) {
		user, err := NewUser("test@example.com", "Password123", RoleStaff)
		require.NoError(t, err)
		user.ClearDomainEvents()

		err = user.ChangePassword("Password123", "NewPassword456")

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword456"))
		assert.False(t, user.VerifyPassword("Password123"))

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserPasswordChangedEvent)
		assert.True(t, ok)
	})

	t.Run("fails with wrong old password", func(t *testing.T) {
		user, err := NewUser("test@example.com", "Password123", RoleStaff)
		require.NoError(t, err)

		err = user.ChangePassword("WrongOld1", "NewPassword456")

		assert.Error(t, err)
		assert.True(t, user.VerifyPassword("Password123"))
	})

	t.Run("clears must change password flag", func(t *testing.T) {
		user, err := NewUser("test@example.com", "Password123", RoleStaff)
		require.NoError(t, err)
		user.ForcePasswordChange()
		assert.True(t, user.MustChangePassword)

		err = user.SetPassword("NewPassword456")

		require.NoError(t, err)
		assert.False(t, user.MustChangePassword)
	})
}

func TestUserChangeRole(t *testing.T) {
	t.Run("changes between portal roles", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)

		err = user.ChangeRole(RoleAdmin)

		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, user.Role)
	})

	t.Run("rejects company role without company binding", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)

		err = user.ChangeRole(RoleCompany)

		assert.Error(t, err)
	})

	t.Run("rejects portal role with company binding", func(t *testing.T) {
		user, err := NewCompanyUser(uuid.New(), "buyer@acme.test", "Password123")
		require.NoError(t, err)

		err = user.ChangeRole(RoleStaff)

		assert.Error(t, err)
	})
}

func TestUserLifecycle(t *testing.T) {
	t.Run("activates pending user", func(t *testing.T) {
		user, err := NewUser("test@example.com", "Password123", RoleStaff)
		require.NoError(t, err)
		user.ClearDomainEvents()

		err = user.Activate()

		require.NoError(t, err)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.True(t, user.CanLogin())
	})

	t.Run("fails to activate already active user", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)

		err = user.Activate()

		assert.Error(t, err)
	})

	t.Run("deactivated user cannot login", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)

		err = user.Deactivate()

		require.NoError(t, err)
		assert.False(t, user.CanLogin())
	})

	t.Run("cannot lock deactivated user", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)
		require.NoError(t, user.Deactivate())

		err = user.Lock(time.Hour)

		assert.Error(t, err)
	})
}

func TestUserLockout(t *testing.T) {
	t.Run("locks after max failed attempts", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)

		locked := user.RecordLoginFailure(3, time.Hour)
		assert.False(t, locked)
		locked = user.RecordLoginFailure(3, time.Hour)
		assert.False(t, locked)
		locked = user.RecordLoginFailure(3, time.Hour)

		assert.True(t, locked)
		assert.Equal(t, UserStatusLocked, user.Status)
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())
		require.NotNil(t, user.LockedUntil)
	})

	t.Run("expired lock no longer blocks login", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)
		require.NoError(t, user.Lock(time.Hour))

		past := time.Now().Add(-time.Minute)
		user.LockedUntil = &past

		assert.False(t, user.IsLocked())
		assert.True(t, user.CanLogin())
	})

	t.Run("unlock resets failed attempts", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)
		user.RecordLoginFailure(1, time.Hour)
		require.True(t, user.IsLocked())

		err = user.Unlock()

		require.NoError(t, err)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.Equal(t, 0, user.FailedAttempts)
		assert.Nil(t, user.LockedUntil)
	})

	t.Run("successful login resets failed attempts", func(t *testing.T) {
		user, err := NewPortalUser("staff@portal.test", "Password123", RoleStaff)
		require.NoError(t, err)
		user.RecordLoginFailure(5, time.Hour)
		user.RecordLoginFailure(5, time.Hour)

		user.RecordLoginSuccess("203.0.113.10")

		assert.Equal(t, 0, user.FailedAttempts)
		assert.Equal(t, "203.0.113.10", user.LastLoginIP)
		require.NotNil(t, user.LastLoginAt)
	})
}

func TestUserDisplayName(t *testing.T) {
	user, err := NewUser("test@example.com", "Password123", RoleStaff)
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", user.GetDisplayNameOrEmail())

	require.NoError(t, user.SetDisplayName("Jane Doe"))
	assert.Equal(t, "Jane Doe", user.GetDisplayNameOrEmail())
}
