// Package scheduler adapts scheduled EventBridge invocations to a sync run.
package scheduler

import (
	"context"
	"errors"

	awsevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"agenda-sync/application/pipeline"
	"agenda-sync/application/ports"
)

// Runner executes one sync run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Response is returned to the Lambda runtime after each invocation.
type Response struct {
	*pipeline.Result
	Skipped     bool   `json:"skipped,omitempty"`
	GlobalError string `json:"globalError,omitempty"`
}

// Handler runs the pipeline once per scheduled event.
type Handler struct {
	runner Runner
	logger *zap.Logger
}

// NewHandler creates a scheduled-event handler.
func NewHandler(runner Runner, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// Handle runs a sync. A run already holding the lock is not a failure: the
// invocation is reported as skipped so the scheduler does not retry it.
// Fetch failures are returned so the invocation is marked failed.
func (h *Handler) Handle(ctx context.Context, event awsevents.CloudWatchEvent) (*Response, error) {
	logger := h.logger.With(
		zap.String("eventId", event.ID),
		zap.String("source", event.Source),
		zap.String("detailType", event.DetailType),
	)
	logger.Info("Scheduled sync triggered")

	result, err := h.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrRunInProgress) {
			logger.Warn("Sync skipped, previous run still in progress")
			return &Response{Skipped: true}, nil
		}
		logger.Error("Scheduled sync failed", zap.Error(err))
		return nil, err
	}

	resp := &Response{Result: result}
	if result.GlobalError != nil {
		resp.GlobalError = result.GlobalError.Error()
	}
	return resp, nil
}
