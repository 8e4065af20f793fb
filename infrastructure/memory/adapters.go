package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
	"agenda-sync/domain/feed"
	apperrors "agenda-sync/pkg/errors"
)

// FileFeed reads the payload from a local JSON file on every fetch, so the
// file can be edited between runs.
type FileFeed struct {
	path string
}

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{path: path}
}

func (f *FileFeed) Fetch(context.Context) (feed.Payload, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return feed.Payload{}, apperrors.NewFetchError(fmt.Sprintf("failed to read feed file %s", f.path), err)
	}
	var payload feed.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return feed.Payload{}, apperrors.NewFetchError("failed to decode feed file", err)
	}
	return payload, nil
}

// Publication is one recorded Publish call.
type Publication struct {
	Location string
	Sessions []agenda.Session
}

// Publisher records publications and logs them instead of calling AppSync.
type Publisher struct {
	logger *zap.Logger

	mu           sync.Mutex
	publications []Publication
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(_ context.Context, location string, sessions []agenda.Session) error {
	p.mu.Lock()
	p.publications = append(p.publications, Publication{Location: location, Sessions: sessions})
	p.mu.Unlock()

	p.logger.Info("Room agenda published (local)",
		zap.String("location", location),
		zap.Int("sessions", len(sessions)),
	)
	return nil
}

// Publications returns a copy of everything published so far.
func (p *Publisher) Publications() []Publication {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Publication(nil), p.publications...)
}
