package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []*activity.ActivityLog
	failing bool
}

func (r *memoryActivityRepo) Save(ctx context.Context, log *activity.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return shared.ErrNotFound
	}
	r.entries = append(r.entries, log)
	return nil
}

func (r *memoryActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityLog, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryActivityRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := shared.NewPaginated(r.entries, int64(len(r.entries)), filter.Page, filter.PageSize)
	return &p, nil
}

func (r *memoryActivityRepo) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	return r.FindAll(ctx, filter)
}

func (r *memoryActivityRepo) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	return r.FindAll(ctx, filter)
}

func (r *memoryActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestActor_Apply(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()
	actor := Actor{
		UserID:    userID,
		Email:     "buchhaltung@kunde.example.de",
		CompanyID: &companyID,
		SourceIP:  "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	}

	entry, err := activity.NewActivityLog(activity.ActionLogin, "Logged in")
	require.NoError(t, err)
	applied := actor.Apply(entry)

	require.NotNil(t, applied.UserID)
	assert.Equal(t, userID, *applied.UserID)
	assert.Equal(t, "buchhaltung@kunde.example.de", applied.UserEmail)
	require.NotNil(t, applied.CompanyID)
	assert.Equal(t, companyID, *applied.CompanyID)
	assert.Equal(t, "203.0.113.7", applied.SourceIP)
	assert.Equal(t, "Mozilla/5.0", applied.UserAgent)
}

func TestActor_Apply_AnonymousKeepsEmail(t *testing.T) {
	actor := Actor{Email: "unbekannt@example.de", SourceIP: "203.0.113.7"}

	entry, err := activity.NewActivityLog(activity.ActionLoginFailed, "Failed login")
	require.NoError(t, err)
	applied := actor.Apply(entry)

	assert.Nil(t, applied.UserID)
	assert.Equal(t, "unbekannt@example.de", applied.UserEmail)
}

func TestRecorder_SwallowsSaveErrors(t *testing.T) {
	repo := &memoryActivityRepo{failing: true}
	recorder := NewRecorder(repo, zap.NewNop())

	entry, err := activity.NewActivityLog(activity.ActionLogin, "Logged in")
	require.NoError(t, err)

	// Must not panic or propagate; activity logging is best effort.
	recorder.Record(context.Background(), entry)
}

func TestRecorder_NilEntryIgnored(t *testing.T) {
	recorder := NewRecorder(&memoryActivityRepo{}, zap.NewNop())
	recorder.Record(context.Background(), nil)
}

func TestService_List(t *testing.T) {
	repo := &memoryActivityRepo{}
	recorder := NewRecorder(repo, zap.NewNop())
	for i := 0; i < 3; i++ {
		entry, err := activity.NewActivityLog(activity.ActionLogin, "Logged in")
		require.NoError(t, err)
		recorder.Record(context.Background(), entry)
	}

	service := NewService(repo, zap.NewNop())
	page, err := service.List(context.Background(), shared.Filter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)
}
