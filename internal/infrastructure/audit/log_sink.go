package audit

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// LogSink escribe los eventos de auditoría en el log estructurado. Se usa cuando no hay Redis.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink sobre el logger de la app.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.Component("audit")}
}

// Publish nunca falla.
func (s *LogSink) Publish(_ context.Context, event entity.AuditEvent) error {
	s.log.Info().
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("actor", event.Actor).
		Interface("data", event.Data).
		Time("occurred_at", event.OccurredAt).
		Msg("audit")
	return nil
}
