//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/audit"
)

func TestRedisSink_EncolaEvento(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := audit.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	sink := audit.NewRedisSink(rdb, "")
	ev := entity.AuditEvent{
		Action:     entity.AuditActionStockAdjusted,
		Resource:   "warehouse_stock",
		ResourceID: "p-1/w-1",
		Actor:      "u-1",
		Data:       map[string]any{"new_quantity": 4},
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, sink.Publish(ctx, ev))

	raw, err := rdb.RPop(ctx, audit.DefaultQueue).Bytes()
	require.NoError(t, err)
	var got entity.AuditEvent
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, ev.Action, got.Action)
	assert.Equal(t, ev.ResourceID, got.ResourceID)
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
}
