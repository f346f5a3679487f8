package importapp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/bulk"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
	csvimport "github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/import"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
)

// RetentionPolicyProvider returns the retention policy applied to imported
// documents.
type RetentionPolicyProvider func(ctx context.Context) settings.RetentionPolicy

// DocumentImportService runs the staff bulk import: a CSV manifest plus the
// PDF files it names. Rows are validated, resolved against the directory
// and processed concurrently; affected companies get a summary mail once
// the whole batch is through.
type DocumentImportService struct {
	batchRepo    bulk.ImportBatchRepository
	invoiceRepo  document.InvoiceRepository
	noteRepo     document.CreditNoteRepository
	companyRepo  directory.CompanyRepository
	supplierRepo directory.SupplierRepository
	store        storage.DocumentStorage
	tracker      *csvimport.BatchTracker
	policy       RetentionPolicyProvider
	recorder     *activityapp.Recorder
	notifier     *notify.Notifier
	config       config.ImportConfig
	logger       *zap.Logger
}

// NewDocumentImportService creates a new document import service
func NewDocumentImportService(
	batchRepo bulk.ImportBatchRepository,
	invoiceRepo document.InvoiceRepository,
	noteRepo document.CreditNoteRepository,
	companyRepo directory.CompanyRepository,
	supplierRepo directory.SupplierRepository,
	store storage.DocumentStorage,
	tracker *csvimport.BatchTracker,
	policy RetentionPolicyProvider,
	recorder *activityapp.Recorder,
	notifier *notify.Notifier,
	cfg config.ImportConfig,
	logger *zap.Logger,
) *DocumentImportService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &DocumentImportService{
		batchRepo:    batchRepo,
		invoiceRepo:  invoiceRepo,
		noteRepo:     noteRepo,
		companyRepo:  companyRepo,
		supplierRepo: supplierRepo,
		store:        store,
		tracker:      tracker,
		policy:       policy,
		recorder:     recorder,
		notifier:     notifier,
		config:       cfg,
		logger:       logger,
	}
}

// StartImport validates the upload, creates the batch and kicks off the
// asynchronous row processing. The returned batch is in processing state;
// callers poll GetBatch for the outcome.
func (s *DocumentImportService) StartImport(ctx context.Context, input StartImportInput, actor activityapp.Actor) (*BatchDTO, error) {
	if len(input.CSVData) == 0 {
		return nil, shared.NewDomainError("INVALID_CSV", "Import file is empty")
	}
	if s.config.MaxFileSize > 0 && int64(len(input.CSVData)) > s.config.MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Import file exceeds the size limit")
	}

	batch, err := bulk.NewImportBatch(input.FileName, int64(len(input.CSVData)), actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		s.logger.Error("Failed to create import batch", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to start import")
	}

	parser, err := csvimport.ParseFromBytes(input.CSVData)
	if err != nil {
		return nil, s.failBatch(ctx, batch, "INVALID_CSV", err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, s.failBatch(ctx, batch, "INVALID_CSV", err.Error())
	}
	if missing := parser.MissingHeaders(csvimport.RequiredColumns()); len(missing) > 0 {
		return nil, s.failBatch(ctx, batch, "MISSING_COLUMNS",
			fmt.Sprintf("Missing required columns: %v", missing))
	}

	rawRows, err := parser.ReadAllRows()
	if err != nil {
		return nil, s.failBatch(ctx, batch, "INVALID_CSV", err.Error())
	}
	if len(rawRows) == 0 {
		return nil, s.failBatch(ctx, batch, "EMPTY_CSV", "Import file contains no data rows")
	}

	mapper := csvimport.NewDocumentRowMapper(s.config.MaxRowErrors)
	rows := make([]*csvimport.DocumentRow, 0, len(rawRows))
	for _, raw := range rawRows {
		if row := mapper.MapRow(raw); row != nil {
			rows = append(rows, row)
		}
	}

	if err := batch.StartProcessing(len(rawRows)); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		s.logger.Error("Failed to mark batch processing", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to start import")
	}

	if entry, err := activity.NewActivityLog(activity.ActionImportStarted,
		fmt.Sprintf("Started import %s with %d rows", batch.FileName, batch.TotalRows)); err == nil {
		entry.WithTarget("import_batch", batch.ID)
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	s.logger.Info("Import started",
		zap.String("batch_id", batch.ID.String()),
		zap.String("file_name", batch.FileName),
		zap.Int("total_rows", batch.TotalRows),
		zap.Int("valid_rows", len(rows)))

	go s.process(batch, rows, mapper.Errors(), input.Files, actor)

	dto := batchToDTO(batch)
	return &dto, nil
}

// GetBatch returns one batch
func (s *DocumentImportService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchDTO, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("BATCH_NOT_FOUND", "Import batch not found")
		}
		s.logger.Error("Failed to load import batch", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load import batch")
	}
	dto := batchToDTO(batch)
	return &dto, nil
}

// ListBatches returns the import history
func (s *DocumentImportService) ListBatches(ctx context.Context, filter shared.Filter) (*shared.Paginated[BatchDTO], error) {
	page, err := s.batchRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list import batches", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list import batches")
	}

	dtos := make([]BatchDTO, 0, len(page.Items))
	for _, batch := range page.Items {
		dtos = append(dtos, batchToDTO(batch))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped, nil
}

// RecoverStale fails batches left in a non-terminal state by a crash or
// restart. Called once at startup.
func (s *DocumentImportService) RecoverStale(ctx context.Context) error {
	stale, err := s.batchRepo.FindStale(ctx)
	if err != nil {
		return fmt.Errorf("finding stale batches: %w", err)
	}

	for _, batch := range stale {
		if err := batch.Fail([]bulk.RowError{{
			Code:    "INTERRUPTED",
			Message: "Import was interrupted by a restart",
		}}); err != nil {
			s.logger.Warn("Stale batch not failable",
				zap.String("batch_id", batch.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.batchRepo.Save(ctx, batch); err != nil {
			s.logger.Error("Failed to fail stale batch",
				zap.String("batch_id", batch.ID.String()),
				zap.Error(err))
			continue
		}
		s.logger.Warn("Failed stale import batch from previous run",
			zap.String("batch_id", batch.ID.String()),
			zap.String("file_name", batch.FileName))
	}
	return nil
}

// companyTally accumulates per-company results for the summary mails.
type companyTally struct {
	company     *directory.Company
	invoices    int
	creditNotes int
}

// importState collects results across the worker pool.
type importState struct {
	mu        sync.Mutex
	imported  int
	skipped   int
	errors    *csvimport.ErrorCollection
	companies map[uuid.UUID]*companyTally
}

func (st *importState) addError(err csvimport.RowError) {
	st.mu.Lock()
	st.errors.Add(err)
	st.mu.Unlock()
}

func (st *importState) addSkip() {
	st.mu.Lock()
	st.skipped++
	st.mu.Unlock()
}

func (st *importState) addImported(company *directory.Company, kind document.Kind) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.imported++
	tally := st.companies[company.ID]
	if tally == nil {
		tally = &companyTally{company: company}
		st.companies[company.ID] = tally
	}
	if kind == document.KindInvoice {
		tally.invoices++
	} else {
		tally.creditNotes++
	}
}

// process runs the batch in the background. The request context is gone by
// now, so everything here works on a fresh one.
func (s *DocumentImportService) process(batch *bulk.ImportBatch, rows []*csvimport.DocumentRow, mapErrors *csvimport.ErrorCollection, files map[string][]byte, actor activityapp.Actor) {
	ctx := context.Background()

	state := &importState{
		errors:    mapErrors,
		companies: make(map[uuid.UUID]*companyTally),
	}

	done := make(chan struct{})
	err := s.tracker.Track(batch.ID, len(rows), func(c csvimport.BatchCompletion) {
		close(done)
	})
	if err != nil {
		s.logger.Error("Failed to track import batch", zap.Error(err))
		return
	}

	jobs := make(chan *csvimport.DocumentRow)
	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				failed := s.processRow(ctx, batch, row, files, state)
				if err := s.tracker.JobDone(batch.ID, failed); err != nil {
					s.logger.Error("Batch tracker rejected job", zap.Error(err))
				}
			}
		}()
	}
	for _, row := range rows {
		jobs <- row
	}
	close(jobs)
	wg.Wait()
	if len(rows) > 0 {
		<-done
	}

	s.finalize(ctx, batch, state, actor)
}

// processRow imports one document. Returns true when the row failed.
func (s *DocumentImportService) processRow(ctx context.Context, batch *bulk.ImportBatch, row *csvimport.DocumentRow, files map[string][]byte, state *importState) bool {
	company, err := s.resolveCompany(ctx, row.CompanyCode)
	if err != nil {
		state.addError(csvimport.NewRowErrorWithValue(row.Line, csvimport.ColCompanyCode,
			"UNKNOWN_COMPANY", "No company matches this code", row.CompanyCode))
		return true
	}

	supplier, err := s.resolveSupplier(ctx, row.SupplierEDIID)
	if err != nil {
		state.addError(csvimport.NewRowErrorWithValue(row.Line, csvimport.ColSupplierEDIID,
			"UNKNOWN_SUPPLIER", "No supplier matches this identifier", row.SupplierEDIID))
		return true
	}

	content, ok := files[row.FileName]
	if !ok {
		state.addError(csvimport.NewRowErrorWithValue(row.Line, csvimport.ColFileName,
			"FILE_MISSING", "Referenced file was not uploaded", row.FileName))
		return true
	}

	duplicate, err := s.isDuplicate(ctx, row.Kind, company.ID, supplier.ID, row.DocumentNumber)
	if err != nil {
		state.addError(csvimport.NewRowError(row.Line, csvimport.ColDocumentNumber,
			"LOOKUP_FAILED", "Could not check for duplicates"))
		return true
	}
	if duplicate {
		s.logger.Debug("Skipping duplicate document",
			zap.String("number", row.DocumentNumber),
			zap.String("company_code", company.Code))
		state.addSkip()
		return false
	}

	docID := uuid.New()
	storageKey := storage.DocumentKey(company.ID, docID, string(row.Kind))
	if err := s.store.Upload(ctx, storageKey, content, "application/pdf"); err != nil {
		s.logger.Error("Failed to upload document file",
			zap.String("storage_key", storageKey),
			zap.Error(err))
		state.addError(csvimport.NewRowError(row.Line, csvimport.ColFileName,
			"UPLOAD_FAILED", "Could not store the document file"))
		return true
	}

	checksum := sha256.Sum256(content)
	file := document.StoredFile{
		StorageKey:  storageKey,
		FileName:    row.FileName,
		ContentType: "application/pdf",
		FileSize:    int64(len(content)),
		Checksum:    hex.EncodeToString(checksum[:]),
	}

	if err := s.saveDocument(ctx, batch, row, company.ID, supplier.ID, docID, file); err != nil {
		state.addError(csvimport.NewRowError(row.Line, "", "SAVE_FAILED", err.Error()))
		return true
	}

	state.addImported(company, row.Kind)
	return false
}

func (s *DocumentImportService) saveDocument(ctx context.Context, batch *bulk.ImportBatch, row *csvimport.DocumentRow, companyID, supplierID, docID uuid.UUID, file document.StoredFile) error {
	policy := s.policy(ctx)

	if row.Kind == document.KindInvoice {
		invoice, err := document.NewInvoice(companyID, supplierID, row.DocumentNumber, row.IssueDate, file)
		if err != nil {
			return err
		}
		invoice.ID = docID
		if err := invoice.SetAmounts(row.Currency, row.NetAmount, row.TaxAmount, row.GrossAmount); err != nil {
			return err
		}
		if row.DueDate != nil {
			if err := invoice.SetDueDate(*row.DueDate); err != nil {
				return err
			}
		}
		if err := invoice.SetReferences(row.OrderNumber, row.DeliveryNoteNumber); err != nil {
			return err
		}
		invoice.ApplyRetention(policy.InvoiceRetention)
		invoice.AttachToBatch(batch.ID)
		invoice.SetCreatedBy(batch.ImportedBy)
		return s.invoiceRepo.Save(ctx, invoice)
	}

	note, err := document.NewCreditNote(companyID, supplierID, row.DocumentNumber, row.IssueDate, file)
	if err != nil {
		return err
	}
	note.ID = docID
	if err := note.SetAmounts(row.Currency, row.NetAmount, row.TaxAmount, row.GrossAmount); err != nil {
		return err
	}
	if row.InvoiceNumber != "" {
		if err := note.SetInvoiceReference(row.InvoiceNumber); err != nil {
			return err
		}
	}
	note.ApplyRetention(policy.CreditNoteRetention)
	note.AttachToBatch(batch.ID)
	note.SetCreatedBy(batch.ImportedBy)
	return s.noteRepo.Save(ctx, note)
}

func (s *DocumentImportService) finalize(ctx context.Context, batch *bulk.ImportBatch, state *importState, actor activityapp.Actor) {
	state.mu.Lock()
	imported := state.imported
	skipped := state.skipped
	failed := batch.TotalRows - imported - skipped
	rowErrors := state.errors.BatchErrors()
	tallies := make([]*companyTally, 0, len(state.companies))
	for _, tally := range state.companies {
		tallies = append(tallies, tally)
	}
	state.mu.Unlock()

	if err := batch.Complete(imported, failed, skipped, rowErrors); err != nil {
		s.logger.Error("Failed to complete batch", zap.Error(err))
		return
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		s.logger.Error("Failed to save completed batch", zap.Error(err))
		return
	}

	if entry, err := activity.NewActivityLog(activity.ActionImportCompleted,
		fmt.Sprintf("Import %s finished: %d imported, %d skipped, %d failed",
			batch.FileName, imported, skipped, failed)); err == nil {
		entry.WithTarget("import_batch", batch.ID)
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	s.logger.Info("Import completed",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))

	s.notifyCompanies(ctx, batch, tallies)
}

// notifyCompanies sends one summary mail per affected company.
func (s *DocumentImportService) notifyCompanies(ctx context.Context, batch *bulk.ImportBatch, tallies []*companyTally) {
	if len(tallies) == 0 {
		return
	}

	now := time.Now()
	for _, tally := range tallies {
		address := tally.company.GetNotificationEmail()
		if address == "" {
			s.logger.Warn("Company has no notification address, summary not sent",
				zap.String("company_code", tally.company.Code))
			continue
		}
		if err := s.notifier.SendImportSummary(ctx, []string{address},
			tally.company.GetDisplayName(), tally.invoices, tally.creditNotes, now); err != nil {
			s.logger.Error("Failed to send import summary",
				zap.String("company_code", tally.company.Code),
				zap.Error(err))
		}
	}

	if err := batch.MarkNotified(); err == nil {
		if err := s.batchRepo.Save(ctx, batch); err != nil {
			s.logger.Error("Failed to mark batch notified", zap.Error(err))
		}
	}
}

func (s *DocumentImportService) resolveCompany(ctx context.Context, code string) (*directory.Company, error) {
	company, err := s.companyRepo.FindByCode(ctx, code)
	if err == nil {
		return company, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}
	return s.companyRepo.FindByEDIPartnerID(ctx, code)
}

func (s *DocumentImportService) resolveSupplier(ctx context.Context, ediID string) (*directory.Supplier, error) {
	supplier, err := s.supplierRepo.FindByEDISenderID(ctx, ediID)
	if err == nil {
		return supplier, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}
	return s.supplierRepo.FindByCode(ctx, ediID)
}

func (s *DocumentImportService) isDuplicate(ctx context.Context, kind document.Kind, companyID, supplierID uuid.UUID, number string) (bool, error) {
	if kind == document.KindInvoice {
		return s.invoiceRepo.ExistsByNumber(ctx, companyID, supplierID, number)
	}
	return s.noteRepo.ExistsByNumber(ctx, companyID, supplierID, number)
}

func (s *DocumentImportService) failBatch(ctx context.Context, batch *bulk.ImportBatch, code, message string) error {
	if err := batch.Fail([]bulk.RowError{{Code: code, Message: message}}); err != nil {
		s.logger.Error("Failed to fail batch", zap.Error(err))
	} else if err := s.batchRepo.Save(ctx, batch); err != nil {
		s.logger.Error("Failed to save failed batch", zap.Error(err))
	}
	return shared.NewDomainError(code, message)
}
