// Package appsync implements the direct Lambda resolver behind the agenda
// GraphQL API.
package appsync

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"agenda-sync/domain/agenda"
	apperrors "agenda-sync/pkg/errors"
)

// AgendaReader serves the query fields.
type AgendaReader interface {
	GetAgenda(ctx context.Context) (*agenda.AgendaData, error)
	GetRoomAgenda(ctx context.Context, location string) (*agenda.RoomAgendaData, error)
	GetHash(ctx context.Context, key string) (*agenda.HashRecord, error)
}

// Event is the payload AppSync sends to a direct Lambda resolver.
type Event struct {
	Arguments json.RawMessage `json:"arguments"`
	Info      Info            `json:"info"`
}

// Info identifies the field being resolved.
type Info struct {
	FieldName      string `json:"fieldName"`
	ParentTypeName string `json:"parentTypeName"`
}

// RoomUpdate is the result of updateRoomAgenda. Subscribers filtered on
// location receive it unchanged.
type RoomUpdate struct {
	Location string          `json:"location"`
	Sessions json.RawMessage `json:"sessions"`
}

// Resolver dispatches on the GraphQL field name.
type Resolver struct {
	reader AgendaReader
	logger *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(reader AgendaReader, logger *zap.Logger) *Resolver {
	return &Resolver{reader: reader, logger: logger}
}

// Handle resolves one field.
func (r *Resolver) Handle(ctx context.Context, event Event) (interface{}, error) {
	logger := r.logger.With(
		zap.String("fieldName", event.Info.FieldName),
		zap.String("parentType", event.Info.ParentTypeName),
	)

	var (
		out interface{}
		err error
	)
	switch event.Info.FieldName {
	case "getAgenda":
		out, err = r.reader.GetAgenda(ctx)
	case "getRoomAgenda":
		var args struct {
			Location string `json:"location"`
		}
		if err = decodeArguments(event.Arguments, &args); err == nil {
			out, err = r.reader.GetRoomAgenda(ctx, args.Location)
		}
	case "getHash":
		var args struct {
			Key string `json:"key"`
		}
		if err = decodeArguments(event.Arguments, &args); err == nil {
			out, err = r.reader.GetHash(ctx, args.Key)
		}
	case "updateRoomAgenda":
		out, err = updateRoomAgenda(event.Arguments)
	default:
		err = apperrors.NewValidationError(fmt.Sprintf("unknown field: %s", event.Info.FieldName))
	}

	if err != nil {
		logger.Warn("Resolver failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// updateRoomAgenda echoes the mutation input so the subscription fan-out
// carries the published sessions.
func updateRoomAgenda(raw json.RawMessage) (*RoomUpdate, error) {
	var args struct {
		Location string `json:"location"`
		Sessions struct {
			Sessions json.RawMessage `json:"sessions"`
		} `json:"sessions"`
	}
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if args.Location == "" {
		return nil, apperrors.NewValidationError("location is required")
	}

	sessions := args.Sessions.Sessions
	if len(sessions) == 0 || string(sessions) == "null" {
		sessions = json.RawMessage("[]")
	}
	return &RoomUpdate{Location: args.Location, Sessions: sessions}, nil
}

func decodeArguments(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewValidationError("invalid arguments").WithCause(err)
	}
	return nil
}
