// Package di wires adapters to the application for every entrypoint.
package di

import (
	"context"

	"go.uber.org/zap"

	"agenda-sync/application/pipeline"
	"agenda-sync/application/ports"
	"agenda-sync/application/queries"
	"agenda-sync/infrastructure/config"
	"agenda-sync/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Stores     *Stores
	Pipeline   *pipeline.Pipeline
	Queries    *queries.AgendaQueries
	Prometheus *observability.PrometheusMetrics
	Metrics    ports.Metrics
}

// Flush sends buffered metrics and syncs the logger. Lambda entrypoints call
// it before returning.
func (c *Container) Flush(ctx context.Context) {
	if err := c.Metrics.Flush(ctx); err != nil {
		c.Logger.Warn("Failed to flush metrics", zap.Error(err))
	}
	_ = c.Logger.Sync()
}
