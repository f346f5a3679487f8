package settings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// fakeSettingRepo is an in-memory settings.SettingRepository.
type fakeSettingRepo struct {
	mu        sync.Mutex
	values    map[string]*settings.Setting
	findAllCt int
	failAll   bool
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: make(map[string]*settings.Setting)}
}

func (r *fakeSettingRepo) Save(ctx context.Context, setting *settings.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[setting.Key] = setting
	return nil
}

func (r *fakeSettingRepo) FindByKey(ctx context.Context, key string) (*settings.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setting, ok := r.values[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return setting, nil
}

func (r *fakeSettingRepo) FindAll(ctx context.Context) ([]*settings.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findAllCt++
	if r.failAll {
		return nil, shared.ErrNotFound
	}
	all := make([]*settings.Setting, 0, len(r.values))
	for _, setting := range r.values {
		all = append(all, setting)
	}
	return all, nil
}

func (r *fakeSettingRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *fakeSettingRepo) findAllCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findAllCt
}

// fakeTemplateRepo is an in-memory settings.EmailTemplateRepository.
type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[settings.TemplateKey]*settings.EmailTemplate
	saves     int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[settings.TemplateKey]*settings.EmailTemplate)}
}

func (r *fakeTemplateRepo) Save(ctx context.Context, template *settings.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.Key] = template
	r.saves++
	return nil
}

func (r *fakeTemplateRepo) FindByKey(ctx context.Context, key settings.TemplateKey) (*settings.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return template, nil
}

func (r *fakeTemplateRepo) FindAll(ctx context.Context) ([]*settings.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*settings.EmailTemplate, 0, len(r.templates))
	for _, template := range r.templates {
		all = append(all, template)
	}
	return all, nil
}

func (r *fakeTemplateRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// recordingActivityRepo captures saved activity entries.
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
	p := shared.NewPaginated[*activity.ActivityLog](nil, 0, 1, 20)
	return &p, nil
}

func (r *recordingActivityRepo) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	p := shared.NewPaginated[*activity.ActivityLog](nil, 0, 1, 20)
	return &p, nil
}

func (r *recordingActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingActivityRepo) last() *activity.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}
