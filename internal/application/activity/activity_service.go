package activity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Service answers activity log queries for the portal UI. Entries are
// immutable, so there is nothing to write here; the Recorder does that.
type Service struct {
	repo   activity.ActivityLogRepository
	logger *zap.Logger
}

// NewService creates a new activity query service
func NewService(repo activity.ActivityLogRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns activity entries across all companies. Staff only.
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	page, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list activity log", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load activity log")
	}
	return page, nil
}

// ListForCompany returns the entries recorded in a company's context.
func (s *Service) ListForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	page, err := s.repo.FindByCompanyID(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Failed to list company activity log",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load activity log")
	}
	return page, nil
}

// ListForUser returns the entries a single user produced.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	page, err := s.repo.FindByUserID(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list user activity log",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load activity log")
	}
	return page, nil
}
