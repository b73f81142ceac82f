// Package jobapi implements the REST submission path for chat messages and
// AI job requests.
package jobapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/readmoa/moachat/core"
	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

const maxErrorBody = 512

// Client talks to the chat backend's REST API. It implements core.RestClient.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens core.TokenSource
	log    pslog.Logger
}

// NewClient constructs a REST client for the given http(s) base URL.
func NewClient(base string, timeout time.Duration, tokens core.TokenSource, logger pslog.Logger) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse http base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("http base url must use http or https scheme, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("http base url must include a host")
	}
	if timeout <= 0 {
		timeout = schema.DefaultHTTPTimeout
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Client{
		base:   parsed,
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    logger,
	}, nil
}

// SubmitJob posts an AI job request and decodes the job outcome.
func (c *Client) SubmitJob(ctx context.Context, req schema.JobRequest) (schema.JobResponse, error) {
	if !req.RoomID.Valid() {
		return schema.JobResponse{}, schema.ErrInvalidRoom
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	var resp schema.JobResponse
	if err := c.post(ctx, "/api/chat/ai-jobs", req, &resp); err != nil {
		return schema.JobResponse{}, err
	}
	c.log.Debug("job submitted", "room", req.RoomID.String(), "command", req.Command, "job", resp.JobID, "status", resp.Status)
	return resp, nil
}

// PostMessage posts a plain chat message for a room.
func (c *Client) PostMessage(ctx context.Context, req schema.PostMessageRequest) error {
	if !req.RoomID.Valid() {
		return schema.ErrInvalidRoom
	}
	if strings.TrimSpace(req.Text) == "" {
		return schema.ErrEmptyMessage
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	endpoint := fmt.Sprintf("/api/chat/rooms/%s/messages", req.RoomID)
	return c.post(ctx, endpoint, req, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("post %s: http %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
