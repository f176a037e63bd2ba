package audit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/audit"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

func TestLogSink_EscribeEventoEstructurado(t *testing.T) {
	var buf bytes.Buffer
	sink := audit.NewLogSink(logger.FromZerolog(zerolog.New(&buf)))

	err := sink.Publish(context.Background(), entity.AuditEvent{
		Action:     entity.AuditActionAlertResolved,
		Resource:   "low_stock_alert",
		ResourceID: "a-1",
		Actor:      "system:auto-resolve",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"action":"alert.resolved"`)
	assert.Contains(t, out, `"component":"audit"`)
	assert.Contains(t, out, `"resource_id":"a-1"`)
}
