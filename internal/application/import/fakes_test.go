package importapp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/bulk"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
)

// The import pipeline runs rows on a worker pool, so the fakes here are
// in-memory stores behind a mutex rather than call-expectation mocks.

type memoryBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*bulk.ImportBatch
	stale   []*bulk.ImportBatch
}

func newMemoryBatchRepo() *memoryBatchRepo {
	return &memoryBatchRepo{batches: make(map[uuid.UUID]*bulk.ImportBatch)}
}

func (r *memoryBatchRepo) Save(ctx context.Context, batch *bulk.ImportBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *memoryBatchRepo) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return batch, nil
}

func (r *memoryBatchRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*bulk.ImportBatch], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*bulk.ImportBatch, 0, len(r.batches))
	for _, batch := range r.batches {
		all = append(all, batch)
	}
	p := shared.NewPaginated(all, int64(len(all)), 1, 20)
	return &p, nil
}

func (r *memoryBatchRepo) FindStale(ctx context.Context) ([]*bulk.ImportBatch, error) {
	return r.stale, nil
}

func (r *memoryBatchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
	return nil
}

// status returns the batch status under the lock, safe to poll while the
// import goroutine is still running.
func (r *memoryBatchRepo) status(id uuid.UUID) bulk.BatchStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return ""
	}
	return batch.Status
}

type memoryInvoiceRepo struct {
	mu       sync.Mutex
	invoices []*document.Invoice
}

func (r *memoryInvoiceRepo) Save(ctx context.Context, invoice *document.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = append(r.invoices, invoice)
	return nil
}

func (r *memoryInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*document.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryInvoiceRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryInvoiceRepo) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryInvoiceRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	p := shared.NewPaginated[*document.Invoice](nil, 0, 1, 20)
	return &p, nil
}

func (r *memoryInvoiceRepo) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	p := shared.NewPaginated[*document.Invoice](nil, 0, 1, 20)
	return &p, nil
}

func (r *memoryInvoiceRepo) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.Invoice, error) {
	return nil, nil
}

func (r *memoryInvoiceRepo) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invoice := range r.invoices {
		if invoice.CompanyID == companyID && invoice.SupplierID == supplierID && invoice.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryInvoiceRepo) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryInvoiceRepo) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *memoryInvoiceRepo) saved() []*document.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*document.Invoice, len(r.invoices))
	copy(out, r.invoices)
	return out
}

type memoryNoteRepo struct {
	mu    sync.Mutex
	notes []*document.CreditNote
}

func (r *memoryNoteRepo) Save(ctx context.Context, note *document.CreditNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

func (r *memoryNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*document.CreditNote, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryNoteRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.CreditNote, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryNoteRepo) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.CreditNote, error) {
	return nil, shared.ErrNotFound
}

func (r *memoryNoteRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	p := shared.NewPaginated[*document.CreditNote](nil, 0, 1, 20)
	return &p, nil
}

func (r *memoryNoteRepo) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	p := shared.NewPaginated[*document.CreditNote](nil, 0, 1, 20)
	return &p, nil
}

func (r *memoryNoteRepo) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.CreditNote, error) {
	return nil, nil
}

func (r *memoryNoteRepo) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, note := range r.notes {
		if note.CompanyID == companyID && note.SupplierID == supplierID && note.CreditNoteNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryNoteRepo) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryNoteRepo) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *memoryNoteRepo) saved() []*document.CreditNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*document.CreditNote, len(r.notes))
	copy(out, r.notes)
	return out
}

type stubCompanyRepo struct {
	byCode    map[string]*directory.Company
	byPartner map[string]*directory.Company
}

func newStubCompanyRepo(companies ...*directory.Company) *stubCompanyRepo {
	repo := &stubCompanyRepo{
		byCode:    make(map[string]*directory.Company),
		byPartner: make(map[string]*directory.Company),
	}
	for _, company := range companies {
		repo.byCode[company.Code] = company
		if company.EDIPartnerID != "" {
			repo.byPartner[company.EDIPartnerID] = company
		}
	}
	return repo
}

func (r *stubCompanyRepo) Save(ctx context.Context, company *directory.Company) error {
	r.byCode[company.Code] = company
	return nil
}

func (r *stubCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*directory.Company, error) {
	for _, company := range r.byCode {
		if company.ID == id {
			return company, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubCompanyRepo) FindByCode(ctx context.Context, code string) (*directory.Company, error) {
	company, ok := r.byCode[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return company, nil
}

func (r *stubCompanyRepo) FindByEDIPartnerID(ctx context.Context, partnerID string) (*directory.Company, error) {
	company, ok := r.byPartner[partnerID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return company, nil
}

func (r *stubCompanyRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*directory.Company], error) {
	p := shared.NewPaginated[*directory.Company](nil, 0, 1, 20)
	return &p, nil
}

func (r *stubCompanyRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *stubCompanyRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.byCode)), nil
}

func (r *stubCompanyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubSupplierRepo struct {
	byCode   map[string]*directory.Supplier
	bySender map[string]*directory.Supplier
}

func newStubSupplierRepo(suppliers ...*directory.Supplier) *stubSupplierRepo {
	repo := &stubSupplierRepo{
		byCode:   make(map[string]*directory.Supplier),
		bySender: make(map[string]*directory.Supplier),
	}
	for _, supplier := range suppliers {
		repo.byCode[supplier.Code] = supplier
		if supplier.EDISenderID != "" {
			repo.bySender[supplier.EDISenderID] = supplier
		}
	}
	return repo
}

func (r *stubSupplierRepo) Save(ctx context.Context, supplier *directory.Supplier) error {
	r.byCode[supplier.Code] = supplier
	return nil
}

func (r *stubSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*directory.Supplier, error) {
	for _, supplier := range r.byCode {
		if supplier.ID == id {
			return supplier, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubSupplierRepo) FindByCode(ctx context.Context, code string) (*directory.Supplier, error) {
	supplier, ok := r.byCode[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return supplier, nil
}

func (r *stubSupplierRepo) FindByEDISenderID(ctx context.Context, senderID string) (*directory.Supplier, error) {
	supplier, ok := r.bySender[senderID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return supplier, nil
}

func (r *stubSupplierRepo) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*directory.Supplier], error) {
	p := shared.NewPaginated[*directory.Supplier](nil, 0, 1, 20)
	return &p, nil
}

func (r *stubSupplierRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *stubSupplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

func (s *memoryStorage) Download(ctx context.Context, storageKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

func (s *memoryStorage) Delete(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

func (s *memoryStorage) Exists(ctx context.Context, storageKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

func (s *memoryStorage) PresignDownloadURL(ctx context.Context, storageKey, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.example.de/" + storageKey, time.Now().Add(expiresIn), nil
}

func (s *memoryStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

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

type recordingActivityRepo struct {
	mu      sync.Mutex
	entries []*activity.ActivityLog
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
	return 0, nil
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
