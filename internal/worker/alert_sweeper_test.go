package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/worker"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

type fakeAlerts struct {
	resolveCalls atomic.Int32
	sweepCalls   atomic.Int32
	resolveErr   error
}

func (f *fakeAlerts) AutoResolveAlerts(context.Context) (*dto.AutoResolveResult, error) {
	f.resolveCalls.Add(1)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &dto.AutoResolveResult{Scanned: 1, Resolved: 1}, nil
}

func (f *fakeAlerts) CheckAndCreateAlerts(context.Context, string, string) (*dto.AlertSweepResult, error) {
	f.sweepCalls.Add(1)
	return &dto.AlertSweepResult{ProductsChecked: 3}, nil
}

func TestSweepOnce_EvaluaAunqueFalleAutoResolucion(t *testing.T) {
	f := &fakeAlerts{resolveErr: errors.New("db caída")}
	worker.SweepOnce(context.Background(), f, logger.Nop())
	assert.EqualValues(t, 1, f.resolveCalls.Load())
	assert.EqualValues(t, 1, f.sweepCalls.Load())
}

func TestStartAlertSweeper_TicksYApagado(t *testing.T) {
	f := &fakeAlerts{}
	ctx, cancel := context.WithCancel(context.Background())
	done := worker.StartAlertSweeper(ctx, worker.AlertSweeperConfig{Alerts: f, Interval: 10 * time.Millisecond})

	require.Eventually(t, func() bool { return f.sweepCalls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el barrido no se detuvo tras cancelar el contexto")
	}
}
