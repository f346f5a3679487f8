package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*identity.User], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.User]), args.Error(1)
}

func (m *MockUserRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*identity.User], error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.User]), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCompanyRepository is a mock implementation of directory.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *directory.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByCode(ctx context.Context, code string) (*directory.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByEDIPartnerID(ctx context.Context, partnerID string) (*directory.Company, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*directory.Company], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*directory.Company]), args.Error(1)
}

func (m *MockCompanyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRegistrationRepository is a mock implementation of identity.PendingRegistrationRepository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Save(ctx context.Context, reg *identity.PendingRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.PendingRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.PendingRegistration), args.Error(1)
}

func (m *MockRegistrationRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*identity.PendingRegistration], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.PendingRegistration]), args.Error(1)
}

func (m *MockRegistrationRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationRepository) ExistsPendingByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryBlacklist is an in-memory auth.TokenBlacklist for tests
type memoryBlacklist struct {
	mu      sync.Mutex
	jtis    map[string]time.Time
	userInv map[string]time.Time
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{
		jtis:    make(map[string]time.Time),
		userInv: make(map[string]time.Time),
	}
}

func (b *memoryBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.jtis[jti]
	return ok && time.Now().Before(expiry), nil
}

func (b *memoryBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userInv[userID] = time.Now()
	return nil
}

func (b *memoryBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	invalidatedAt, ok := b.userInv[userID]
	return ok && tokenIssuedAt.Before(invalidatedAt), nil
}

// capturingSender records outbound mails instead of delivering them
type capturingSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (s *capturingSender) Send(ctx context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *capturingSender) sent() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mail.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// seededTemplateRepo serves the default templates without a database
type seededTemplateRepo struct {
	mu        sync.Mutex
	templates map[settings.TemplateKey]*settings.EmailTemplate
}

func newSeededTemplateRepo() *seededTemplateRepo {
	repo := &seededTemplateRepo{templates: make(map[settings.TemplateKey]*settings.EmailTemplate)}
	for _, seed := range mail.GetDefaultTemplates() {
		template, err := settings.NewEmailTemplate(seed.Key, seed.Name, seed.Subject, seed.Body)
		if err != nil {
			panic(err)
		}
		repo.templates[seed.Key] = template
	}
	return repo
}

func (r *seededTemplateRepo) Save(ctx context.Context, template *settings.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.Key] = template
	return nil
}

func (r *seededTemplateRepo) FindByKey(ctx context.Context, key settings.TemplateKey) (*settings.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return template, nil
}

func (r *seededTemplateRepo) FindAll(ctx context.Context) ([]*settings.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*settings.EmailTemplate, 0, len(r.templates))
	for _, template := range r.templates {
		out = append(out, template)
	}
	return out, nil
}

// memoryActivityRepo records activity entries in memory
type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []*activity.ActivityLog
}

func (r *memoryActivityRepo) Save(ctx context.Context, entry *activity.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityLog, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryActivityRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page := shared.NewPaginated(r.entries, int64(len(r.entries)), 1, 100)
	return &page, nil
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

func (r *memoryActivityRepo) actions() []activity.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.Action, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}
