package persistence

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// DomainEventLogger drains the events an aggregate raised while it was
// changed and emits them as structured log entries once the row is written.
// Aggregates keep raising events from their state transitions; this is the
// single in-process sink that consumes them.
type DomainEventLogger struct {
	log *zap.Logger
}

// NewDomainEventLogger creates a new domain event logger
func NewDomainEventLogger(log *zap.Logger) *DomainEventLogger {
	return &DomainEventLogger{log: log.Named("domain_events")}
}

// Register hooks the drain into gorm's create and update flows.
func (l *DomainEventLogger) Register(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("portal:domain_events:create", l.flush); err != nil {
		return err
	}
	return db.Callback().Update().After("gorm:update").Register("portal:domain_events:update", l.flush)
}

// flush logs and clears the pending events of the saved aggregate. A failed
// write keeps the events on the aggregate for a retried save.
func (l *DomainEventLogger) flush(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil {
		return
	}
	root, ok := tx.Statement.Dest.(shared.AggregateRoot)
	if !ok {
		return
	}

	for _, event := range root.GetDomainEvents() {
		fields := []zap.Field{
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		}
		if event.CompanyID() != uuid.Nil {
			fields = append(fields, zap.String("company_id", event.CompanyID().String()))
		}
		l.log.Info("Domain event", fields...)
	}
	root.ClearDomainEvents()
}
