package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

// DefaultQueue lista de Redis donde se encolan los eventos.
const DefaultQueue = "audit:inventory"

// DefaultPublishTimeout tope por LPUSH; un Redis caído no retiene la petición.
const DefaultPublishTimeout = 500 * time.Millisecond

// RedisSink encola eventos de auditoría en una lista de Redis (LPUSH).
// El consumidor (servicio de auditoría) los retira con BRPOP.
type RedisSink struct {
	rdb   *redis.Client
	queue string
	// Timeout acota cada LPUSH. Cero usa DefaultPublishTimeout.
	Timeout time.Duration
}

// NewRedisSink construye el sink. queue vacío = DefaultQueue.
func NewRedisSink(rdb *redis.Client, queue string) *RedisSink {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisSink{rdb: rdb, queue: queue, Timeout: DefaultPublishTimeout}
}

// Publish serializa el evento y lo encola.
func (s *RedisSink) Publish(ctx context.Context, event entity.AuditEvent) error {
	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	pushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.rdb.LPush(pushCtx, s.queue, encoded).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", s.queue, err)
	}
	return nil
}

// NewRedisClient abre el cliente a partir de una URL redis://.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	// Los plazos del contexto gobiernan lecturas y escrituras del socket.
	opts.ContextTimeoutEnabled = true
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
