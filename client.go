package hl7

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	dictionaryFieldPath = "/api/dictionary/field"
	configurabilityPath = "/api/configurability"

	requestIDHeader = "X-Request-ID"

	defaultClientTimeout = 10 * time.Second
)

// FieldEditRequest asks the persistence collaborator to save an edit to
// the name/description of a dictionary field
type FieldEditRequest struct {
	Segment     string `json:"segment"`
	FieldIndex  int    `json:"fieldIndex"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type FieldEditResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ConfigUpsertRequest asks the collaborator to create or replace the
// annotation at a position. ImagePaths may carry raw data:image/... URIs;
// the collaborator converts those to stored references and returns the
// entry normalized in ConfigUpsertResponse.Data.
type ConfigUpsertRequest struct {
	Position    string   `json:"position"`
	FieldName   string   `json:"fieldName,omitempty"`
	EMRLocation string   `json:"emrLocation,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	ImagePaths  []string `json:"imagePaths,omitempty"`
}

type ConfigUpsertResponse struct {
	Success bool         `json:"success"`
	Data    *ConfigEntry `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

type ConfigDeleteRequest struct {
	Position string `json:"position"`
}

type ConfigDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Client talks JSON over HTTP to the persistence collaborator that owns
// dictionary edits and operator annotations on disk. The collaborator's
// storage layout is its own business; only the request/response shapes
// here are load-bearing.
//
// Retry and timeout policy live here (and in the collaborator), not in
// the stores: a request either confirms or it doesn't.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client for the collaborator at the given base URL
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		logger:     logger,
	}
}

// SaveFieldEdit submits a dictionary field edit. A transport or decoding
// failure is returned as an error; a collaborator rejection comes back as
// a response with Success false and the collaborator's message.
func (c *Client) SaveFieldEdit(
	ctx context.Context,
	req FieldEditRequest,
) (FieldEditResponse, error) {
	var resp FieldEditResponse
	err := c.do(ctx, http.MethodPost, dictionaryFieldPath, req, &resp)
	return resp, err
}

// SaveConfig submits an annotation upsert
func (c *Client) SaveConfig(
	ctx context.Context,
	req ConfigUpsertRequest,
) (ConfigUpsertResponse, error) {
	var resp ConfigUpsertResponse
	err := c.do(ctx, http.MethodPost, configurabilityPath, req, &resp)
	return resp, err
}

// DeleteConfig submits an annotation delete for the given position
func (c *Client) DeleteConfig(
	ctx context.Context,
	position string,
) (ConfigDeleteResponse, error) {
	var resp ConfigDeleteResponse
	err := c.do(
		ctx,
		http.MethodDelete,
		configurabilityPath,
		ConfigDeleteRequest{Position: position},
		&resp,
	)
	return resp, err
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	payload any,
	out any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	httpReq, err := http.NewRequestWithContext(
		ctx,
		method,
		c.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Msg("persistence request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"unexpected status %d from %s %s",
			resp.StatusCode,
			method,
			path,
		)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
