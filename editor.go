package hl7

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrEditRejected indicates the persistence collaborator reported a
// failed save or delete. The collaborator's message is attached verbatim.
var ErrEditRejected = errors.New("edit rejected")

// Editor is the single-writer update path for the in-memory tables: it
// submits each mutation to the persistence collaborator and applies it
// locally only once the collaborator confirms. Mutations are serialized
// and land in confirmation order; a failed round trip leaves both tables
// untouched. Any number of concurrent readers may use the Dictionary and
// ConfigTable while an Editor is working.
type Editor struct {
	dict   *Dictionary
	config *ConfigTable
	client *Client
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewEditor creates an Editor over the given tables and collaborator
// client
func NewEditor(
	dict *Dictionary,
	config *ConfigTable,
	client *Client,
	logger zerolog.Logger,
) *Editor {
	return &Editor{
		dict:   dict,
		config: config,
		client: client,
		logger: logger,
	}
}

// EditField persists a field name/description edit and, on confirmation,
// overwrites the field definition in place. A collaborator rejection is
// returned wrapping ErrEditRejected with the collaborator's message, and
// nothing is applied locally.
func (e *Editor) EditField(ctx context.Context, req FieldEditRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	resp, err := e.client.SaveFieldEdit(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrEditRejected, resp.Message)
	}
	if err := e.dict.ApplyFieldEdit(
		req.Segment,
		req.FieldIndex,
		req.Name,
		req.Description,
	); err != nil {
		return err
	}
	e.logger.Info().
		Str("segment", req.Segment).
		Int("field", req.FieldIndex).
		Msg("applied field edit")
	return nil
}

// Configure persists an annotation upsert and, on confirmation, stores
// the collaborator's normalized entry - never the request payload - at
// the requested position. The stored entry is returned.
func (e *Editor) Configure(
	ctx context.Context,
	req ConfigUpsertRequest,
) (ConfigEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	resp, err := e.client.SaveConfig(ctx, req)
	if err != nil {
		return ConfigEntry{}, err
	}
	if !resp.Success {
		return ConfigEntry{}, fmt.Errorf("%w: %s", ErrEditRejected, resp.Message)
	}
	if resp.Data == nil {
		return ConfigEntry{}, fmt.Errorf(
			"%w: save confirmed but no entry was returned",
			ErrEditRejected,
		)
	}
	e.config.Upsert(req.Position, *resp.Data)
	e.logger.Info().
		Str("position", req.Position).
		Msg("applied configurability entry")
	return *resp.Data, nil
}

// Unconfigure persists an annotation delete and, on confirmation, removes
// the entry at the given position.
func (e *Editor) Unconfigure(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	resp, err := e.client.DeleteConfig(ctx, position)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrEditRejected, resp.Message)
	}
	e.config.Remove(position)
	e.logger.Info().
		Str("position", position).
		Msg("removed configurability entry")
	return nil
}
