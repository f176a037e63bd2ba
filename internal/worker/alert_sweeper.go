package worker

// alert_sweeper.go
// Goroutine de fondo que cada intervalo cierra las alertas de stock bajo que ya no aplican
// y evalúa el catálogo completo para abrir las que falten.

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// AlertMaintainer operaciones del servicio de alertas que usa el barrido.
type AlertMaintainer interface {
	AutoResolveAlerts(ctx context.Context) (*dto.AutoResolveResult, error)
	CheckAndCreateAlerts(ctx context.Context, productID, warehouseID string) (*dto.AlertSweepResult, error)
}

// AlertSweeperConfig dependencias del barrido.
type AlertSweeperConfig struct {
	Alerts   AlertMaintainer
	Interval time.Duration
	Log      *logger.Logger
}

// StartAlertSweeper lanza el barrido periódico. El canal devuelto se cierra cuando la goroutine termina
// (al cancelarse ctx).
func StartAlertSweeper(ctx context.Context, cfg AlertSweeperConfig) <-chan struct{} {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	log := cfg.Log.Component("alert_sweeper")
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("alert_sweeper: iniciado")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alert_sweeper: detenido")
				return
			case <-ticker.C:
				SweepOnce(ctx, cfg.Alerts, log)
			}
		}
	}()
	return done
}

// SweepOnce ejecuta un ciclo: primero auto-resolución, luego evaluación del catálogo.
// Los errores se registran; el siguiente tick vuelve a intentar.
func SweepOnce(ctx context.Context, alerts AlertMaintainer, log *logger.Logger) {
	resolved, err := alerts.AutoResolveAlerts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alert_sweeper: auto-resolución falló")
	} else if resolved.Resolved > 0 {
		log.Info().Int("resolved", resolved.Resolved).Msg("alert_sweeper: alertas cerradas")
	}

	if ctx.Err() != nil {
		return
	}
	sweep, err := alerts.CheckAndCreateAlerts(ctx, "", "")
	if err != nil {
		log.Error().Err(err).Msg("alert_sweeper: evaluación del catálogo falló")
		return
	}
	if sweep.AlertsCreated > 0 || len(sweep.Failures) > 0 {
		log.Info().Int("checked", sweep.ProductsChecked).Int("created", sweep.AlertsCreated).
			Int("failures", len(sweep.Failures)).Msg("alert_sweeper: catálogo evaluado")
	}
}
