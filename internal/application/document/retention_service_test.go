package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
)

type retentionFixture struct {
	service     *RetentionService
	invoiceRepo *MockInvoiceRepository
	noteRepo    *MockCreditNoteRepository
	store       *fakeStorage
	activity    *recordingActivityRepo
	policy      settings.RetentionPolicy
}

func newRetentionFixture(t *testing.T) *retentionFixture {
	t.Helper()
	f := &retentionFixture{
		invoiceRepo: new(MockInvoiceRepository),
		noteRepo:    new(MockCreditNoteRepository),
		store:       newFakeStorage(false),
		activity:    &recordingActivityRepo{},
		policy:      settings.DefaultRetentionPolicy(),
	}
	f.service = NewRetentionService(f.invoiceRepo, f.noteRepo, f.activity, f.store,
		func(ctx context.Context) settings.RetentionPolicy { return f.policy },
		zap.NewNop())
	return f
}

func expiredInvoice(t *testing.T) *document.Invoice {
	t.Helper()
	invoice := testInvoice(t)
	past := time.Now().Add(-time.Hour)
	invoice.ExpiresAt = &past
	return invoice
}

func TestRetentionService_Sweep_ExpiresAndPurges(t *testing.T) {
	f := newRetentionFixture(t)
	invoice := expiredInvoice(t)
	require.NoError(t, f.store.Upload(context.Background(), invoice.File.StorageKey, []byte("pdf"), "application/pdf"))

	f.invoiceRepo.On("FindPastRetention", mock.Anything, mock.Anything, 50).Return([]*document.Invoice{invoice}, nil)
	f.invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
	f.noteRepo.On("FindPastRetention", mock.Anything, mock.Anything, 49).Return([]*document.CreditNote{}, nil)

	expired, err := f.service.SweepExpiredDocuments(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, document.StatusExpired, invoice.Status)

	exists, err := f.store.Exists(context.Background(), invoice.File.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, f.activity.actions(), activity.ActionDocumentExpired)
}

func TestRetentionService_Sweep_FailedPurgeLeavesDocument(t *testing.T) {
	f := newRetentionFixture(t)
	invoice := expiredInvoice(t)
	f.store.failDel[invoice.File.StorageKey] = true

	f.invoiceRepo.On("FindPastRetention", mock.Anything, mock.Anything, 50).Return([]*document.Invoice{invoice}, nil)
	f.noteRepo.On("FindPastRetention", mock.Anything, mock.Anything, 50).Return([]*document.CreditNote{}, nil)

	expired, err := f.service.SweepExpiredDocuments(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	assert.Equal(t, document.StatusAvailable, invoice.Status)
	f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRetentionService_Sweep_BudgetSharedWithCreditNotes(t *testing.T) {
	f := newRetentionFixture(t)
	first := expiredInvoice(t)
	second := expiredInvoice(t)

	f.invoiceRepo.On("FindPastRetention", mock.Anything, mock.Anything, 2).Return([]*document.Invoice{first, second}, nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*document.Invoice")).Return(nil)

	expired, err := f.service.SweepExpiredDocuments(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	// The invoice batch used the whole budget, credit notes are not queried.
	f.noteRepo.AssertNotCalled(t, "FindPastRetention", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetentionService_CleanupActivityLogs(t *testing.T) {
	f := newRetentionFixture(t)
	f.policy.ActivityLogRetention = 365 * 24 * time.Hour
	f.activity.purged = 12

	deleted, err := f.service.CleanupActivityLogs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.WithinDuration(t, time.Now().Add(-f.policy.ActivityLogRetention), f.activity.lastCutoff, time.Minute)
}

func TestRetentionService_CleanupActivityLogs_DisabledRetention(t *testing.T) {
	f := newRetentionFixture(t)
	f.policy.ActivityLogRetention = 0
	f.activity.purged = 12

	deleted, err := f.service.CleanupActivityLogs(context.Background())

	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.True(t, f.activity.lastCutoff.IsZero())
}
