// Package appsync pushes room agenda updates to subscribers through the
// AppSync updateRoomAgenda mutation.
package appsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

const updateRoomAgendaMutation = `
mutation UpdateRoomAgenda($location: String!, $sessions: AgendaDataInput!) {
  updateRoomAgenda(location: $location, sessions: $sessions) {
    location
    sessions {
      id
      name
      time
      dateStart
      dateEnd
      duration
      location
      nationality
      level
      language
      category
      capacity
      status
      liveUrl
      recordingUrl
      speakers {
        id
        name
        avatarUrl
        company
        bio
        nationality
        socialMedia {
          twitter
          linkedin
          company
        }
      }
    }
  }
}`

const maxErrorBodyBytes = 1024

// BreakerSettings tune the publisher's circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerSettings trips after most of a handful of requests fail at
// the transport level, which is what a down or throttling endpoint looks like.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.8,
	}
}

// Publisher sends GraphQL mutations to the AppSync endpoint.
type Publisher struct {
	endpoint  string
	apiKey    string
	userAgent string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewPublisher creates a publisher. The client is injected so production can
// pass an X-Ray instrumented one.
func NewPublisher(endpoint, apiKey, userAgent string, client *http.Client, settings BreakerSettings, logger *zap.Logger) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "appsync",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureThreshold
		},
		// A rejected mutation is about one room's data; only endpoint health
		// counts toward tripping, so other rooms keep publishing.
		IsSuccessful: func(err error) bool {
			return err == nil || !isEndpointFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Publisher{
		endpoint:  endpoint,
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    client,
		breaker:   breaker,
		logger:    logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables mutationInputs `json:"variables"`
}

type mutationInputs struct {
	Location string          `json:"location"`
	Sessions agendaDataInput `json:"sessions"`
}

type agendaDataInput struct {
	Sessions []sessionInput `json:"sessions"`
}

type graphQLResponse struct {
	Data struct {
		UpdateRoomAgenda json.RawMessage `json:"updateRoomAgenda"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
}

// Publish sends the room's full session list. An open breaker fails fast
// with a PublishError.
func (p *Publisher) Publish(ctx context.Context, location string, sessions []agenda.Session) error {
	inputs := make([]sessionInput, 0, len(sessions))
	for _, s := range sessions {
		inputs = append(inputs, toSessionInput(s))
	}

	body, err := json.Marshal(graphQLRequest{
		Query: updateRoomAgendaMutation,
		Variables: mutationInputs{
			Location: location,
			Sessions: agendaDataInput{Sessions: inputs},
		},
	})
	if err != nil {
		return apperrors.NewPublishError(location, "failed to encode mutation", err)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.send(ctx, location, body)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return apperrors.NewPublishError(location, "circuit breaker rejected request", err)
	}
	return err
}

func (p *Publisher) send(ctx context.Context, location string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewPublishError(location, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return endpointFailure(apperrors.NewPublishError(location, "request failed", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return endpointFailure(apperrors.NewPublishError(location, "failed to read response", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := respBody
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		publishErr := apperrors.NewPublishError(location, fmt.Sprintf("endpoint returned status %d", resp.StatusCode), nil).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(snippet))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return endpointFailure(publishErr)
		}
		return publishErr
	}

	var result graphQLResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return apperrors.NewPublishError(location, "failed to decode response", err)
	}
	if len(result.Errors) > 0 {
		return apperrors.NewPublishError(location, "mutation returned errors", nil).
			WithDetail("errors", result.Errors)
	}
	if len(result.Data.UpdateRoomAgenda) == 0 || string(result.Data.UpdateRoomAgenda) == "null" {
		return apperrors.NewPublishError(location, "response has no updateRoomAgenda data", nil)
	}

	p.logger.Debug("Published room agenda", zap.String("location", location))
	return nil
}

const detailEndpointFailure = "endpointFailure"

func endpointFailure(err *apperrors.AppError) *apperrors.AppError {
	return err.WithDetail(detailEndpointFailure, true)
}

// isEndpointFailure reports whether err came from the endpoint being
// unreachable, failing or throttling, as opposed to rejecting the request.
func isEndpointFailure(err error) bool {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		return true
	}
	failed, _ := appErr.Details[detailEndpointFailure].(bool)
	return failed
}
