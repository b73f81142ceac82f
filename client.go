// Package moachat assembles the realtime chat connection core: the websocket
// transport, the REST submission path, and the room service behind them.
package moachat

import (
	"context"
	"errors"

	"github.com/readmoa/moachat/core"
	"github.com/readmoa/moachat/internal/jobapi"
	"github.com/readmoa/moachat/internal/wsgate"
	"github.com/readmoa/moachat/schema"
	"pkt.systems/pslog"
)

// ClientConfig wires a Client to a chat backend.
type ClientConfig struct {
	// Service carries the connection-core limits.
	Service schema.ClientConfig
	// HTTPBase is the REST endpoint base URL (http/https).
	HTTPBase string
	// WSBase is the stream endpoint base URL (ws/wss).
	WSBase string
	// Tokens supplies the bearer credential; may be nil for anonymous use.
	Tokens core.TokenSource
	// Sinks receive room events; all of them see every event.
	Sinks  []core.EventSink
	Logger pslog.Logger
}

// Client is a ready-to-use multi-room chat client.
type Client struct {
	service core.Service
	log     pslog.Logger
}

// NewClient constructs the client and its transports.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.WSBase == "" {
		return nil, errors.New("ws base url is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	serviceCfg, err := schema.NormalizeClientConfig(cfg.Service)
	if err != nil {
		return nil, err
	}

	dialer, err := wsgate.NewDialer(cfg.WSBase, serviceCfg.ReadLimit)
	if err != nil {
		return nil, err
	}
	var rest core.RestClient
	if cfg.HTTPBase != "" {
		client, err := jobapi.NewClient(cfg.HTTPBase, serviceCfg.HTTPTimeout, cfg.Tokens, logger)
		if err != nil {
			return nil, err
		}
		rest = client
	}

	service, err := core.NewService(serviceCfg, core.ServiceDeps{
		Dialer: dialer,
		Tokens: cfg.Tokens,
		Rest:   rest,
		Sink:   eventFanout{sinks: cfg.Sinks},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return &Client{service: service, log: logger}, nil
}

// Service exposes the room operations.
func (c *Client) Service() core.Service {
	return c.service
}

// Close tears down every live connection and pending timer.
func (c *Client) Close(ctx context.Context) error {
	return c.service.Teardown(ctx)
}
