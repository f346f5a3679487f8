package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/security"
)

// AuthService handles login, logout, token refresh and password changes.
// Lockout thresholds come from the security policy, which admins edit at
// runtime.
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	monitor    *security.LoginMonitor
	policy     security.PolicyProvider
	recorder   *activityapp.Recorder
	notifier   *notify.Notifier
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	monitor *security.LoginMonitor,
	policy security.PolicyProvider,
	recorder *activityapp.Recorder,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		monitor:    monitor,
		policy:     policy,
		recorder:   recorder,
		notifier:   notifier,
		logger:     logger,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("email", email))
		s.handleFailure(ctx, email, input, nil)
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("email", email))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		if user.IsDeactivated() {
			s.logger.Warn("Login attempt for deactivated account", zap.String("email", email))
			return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
		}
		if user.IsPending() {
			s.logger.Warn("Login attempt for pending account", zap.String("email", email))
			return nil, shared.NewDomainError("ACCOUNT_PENDING", "Account is pending activation")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		policy := s.policy()
		locked := user.RecordLoginFailure(policy.MaxFailedAttempts, policy.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		s.handleFailure(ctx, email, input, user)

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("email", email),
				zap.Int("attempts", policy.MaxFailedAttempts))
			s.notifyLockout(ctx, user, input.SourceIP, policy.AlertRecipients)
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("email", email),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.SourceIP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after login", zap.Error(err))
	}
	s.monitor.RecordSuccess(email, input.SourceIP)

	if entry, err := activity.NewActivityLog(activity.ActionLogin, "Signed in"); err == nil {
		s.recorder.Record(ctx, s.actorFor(user, input.SourceIP, input.UserAgent).Apply(entry))
	}

	s.logger.Info("Login successful",
		zap.String("email", email),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  userToInfo(user),
	}, nil
}

// Logout invalidates the presented access token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, sourceIP, userAgent string) error {
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	if entry, err := activity.NewActivityLog(activity.ActionLogout, "Signed out"); err == nil {
		actor := activityapp.Actor{Email: claims.Email, SourceIP: sourceIP, UserAgent: userAgent}
		if userID, err := claims.GetUserUUID(); err == nil {
			actor.UserID = userID
		}
		if companyID, err := claims.GetCompanyUUID(); err == nil {
			actor.CompanyID = companyID
		}
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	s.logger.Info("Logout", zap.String("email", claims.Email))
	return nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// account is re-checked so deactivating or locking a user cuts off their
// sessions at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	if blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh tokens")
	} else if blacklisted {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Account no longer exists")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Email)
	if err != nil {
		s.logger.Warn("Token refresh rejected", zap.String("email", user.Email), zap.Error(err))
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  userToInfo(user),
	}, nil
}

// ChangePassword changes the caller's own password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput, sourceIP, userAgent string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to change password")
	}

	if entry, err := activity.NewActivityLog(activity.ActionPasswordChanged, "Changed own password"); err == nil {
		s.recorder.Record(ctx, s.actorFor(user, sourceIP, userAgent).Apply(entry))
	}

	s.logger.Info("Password changed", zap.String("email", user.Email))
	return nil
}

// handleFailure feeds the login monitor, writes the failure to the activity
// log and mails an alert for every threshold crossing.
func (s *AuthService) handleFailure(ctx context.Context, email string, input LoginInput, user *identity.User) {
	alerts := s.monitor.RecordFailure(email, input.SourceIP)

	entry, err := activity.NewActivityLog(activity.ActionLoginFailed,
		fmt.Sprintf("Failed login for %s", email))
	if err == nil {
		actor := activityapp.Actor{Email: email, SourceIP: input.SourceIP, UserAgent: input.UserAgent}
		if user != nil {
			actor.UserID = user.ID
			actor.CompanyID = user.CompanyID
		}
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	if len(alerts) == 0 {
		return
	}
	recipients := s.policy().AlertRecipients
	for _, alert := range alerts {
		if err := s.notifier.SendBruteForceAlert(ctx, recipients, alert); err != nil {
			s.logger.Error("Failed to send brute force alert",
				zap.String("key", alert.Key),
				zap.Error(err))
		}
	}
}

func (s *AuthService) notifyLockout(ctx context.Context, user *identity.User, sourceIP string, recipients []string) {
	entry, err := activity.NewActivityLog(activity.ActionAccountLocked,
		fmt.Sprintf("Account locked after failed logins: %s", user.Email))
	if err == nil {
		actor := activityapp.Actor{UserID: user.ID, Email: user.Email, CompanyID: user.CompanyID, SourceIP: sourceIP}
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	if err := s.notifier.SendLockoutAlert(ctx, recipients, user.Email, user.FailedAttempts, sourceIP, time.Now()); err != nil {
		s.logger.Error("Failed to send lockout alert",
			zap.String("email", user.Email),
			zap.Error(err))
	}
}

func (s *AuthService) actorFor(user *identity.User, sourceIP, userAgent string) activityapp.Actor {
	return activityapp.Actor{
		UserID:    user.ID,
		Email:     user.Email,
		CompanyID: user.CompanyID,
		SourceIP:  sourceIP,
		UserAgent: userAgent,
	}
}
