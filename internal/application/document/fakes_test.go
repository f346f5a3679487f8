package document

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
)

// MockInvoiceRepository is a mock implementation of document.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *document.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.Invoice, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.Invoice, error) {
	args := m.Called(ctx, companyID, supplierID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*document.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*document.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.Invoice, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, companyID, supplierID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCreditNoteRepository is a mock implementation of document.CreditNoteRepository
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *document.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.CreditNote, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.CreditNote, error) {
	args := m.Called(ctx, companyID, supplierID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*document.CreditNote]), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*document.CreditNote]), args.Error(1)
}

func (m *MockCreditNoteRepository) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.CreditNote, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, companyID, supplierID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditNoteRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeStorage is an in-memory storage.DocumentStorage. Presigning can be
// toggled to cover both the S3-style and the streaming download path.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	presign bool
	deleted []string
	failDel map[string]bool
}

func newFakeStorage(presign bool) *fakeStorage {
	return &fakeStorage{
		objects: make(map[string][]byte),
		presign: presign,
		failDel: make(map[string]bool),
	}
}

func (s *fakeStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, storageKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", storageKey)
	}
	return data, nil
}

func (s *fakeStorage) Delete(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel[storageKey] {
		return fmt.Errorf("delete failed: %s", storageKey)
	}
	delete(s.objects, storageKey)
	s.deleted = append(s.deleted, storageKey)
	return nil
}

func (s *fakeStorage) Exists(ctx context.Context, storageKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

func (s *fakeStorage) PresignDownloadURL(ctx context.Context, storageKey, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	if !s.presign {
		return "", time.Time{}, storage.ErrPresignUnsupported
	}
	return "https://files.example.de/" + storageKey, time.Now().Add(expiresIn), nil
}

// recordingActivityRepo captures saved activity entries.
type recordingActivityRepo struct {
	mu         sync.Mutex
	entries    []*activity.ActivityLog
	purged     int64
	lastCutoff time.Time
}

func (r *recordingActivityRepo) Save(ctx context.Context, log *activity.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, log)
	return nil
}

func (r *recordingActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityLog, error) {
	return nil, shared.ErrNotFound
}

func (r *recordingActivityRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	p := shared.NewPaginated[*activity.ActivityLog](nil, 0, 1, 20)
	return &p, nil
}

func (r *recordingActivityRepo) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	return r.FindAll(ctx, filter)
}

func (r *recordingActivityRepo) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	return r.FindAll(ctx, filter)
}

func (r *recordingActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCutoff = cutoff
	return r.purged, nil
}

func (r *recordingActivityRepo) actions() []activity.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.Action, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}
