// Package feed retrieves the schedule payload over HTTP.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	domainfeed "agenda-sync/domain/feed"
	apperrors "agenda-sync/pkg/errors"
)

const maxErrorBodyBytes = 512

// HTTPSource fetches the full schedule ("view/All") from the feed URL.
type HTTPSource struct {
	url       string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

// NewHTTPSource creates a source. The client is injected so production can
// pass an X-Ray instrumented one.
func NewHTTPSource(url, userAgent string, client *http.Client, logger *zap.Logger) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		url:       url,
		userAgent: userAgent,
		client:    client,
		logger:    logger,
	}
}

// Fetch performs one GET. Transport failures, non-2xx responses and
// undecodable bodies are all FetchErrors.
func (s *HTTPSource) Fetch(ctx context.Context) (domainfeed.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return domainfeed.Payload{}, apperrors.NewFetchError("failed to build feed request", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domainfeed.Payload{}, apperrors.NewFetchError("feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		s.logger.Warn("Feed returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(snippet)),
		)
		return domainfeed.Payload{}, apperrors.NewFetchError(
			fmt.Sprintf("feed returned status %d", resp.StatusCode), nil,
		).WithDetail("status", resp.StatusCode).WithDetail("body", string(snippet))
	}

	var payload domainfeed.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domainfeed.Payload{}, apperrors.NewFetchError("failed to decode feed payload", err)
	}

	s.logger.Debug("Fetched feed",
		zap.Int("sessions", len(payload.Sessions)),
		zap.Int("speakers", len(payload.Speakers)),
		zap.Int("rooms", len(payload.Rooms)),
	)
	return payload, nil
}
