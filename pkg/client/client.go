// Package client is the entry point for library users. A Client bundles the
// actor fetcher and the domain transformers behind one value configured from
// a config.Config.
package client

import (
	"context"
	"fmt"

	"github.com/openearth/openclimate/pkg/actor"
	"github.com/openearth/openclimate/pkg/climate"
	"github.com/openearth/openclimate/pkg/config"
	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/table"
	"github.com/openearth/openclimate/pkg/transport"
)

// Client talks to one OpenClimate server.
type Client struct {
	cfg     *config.Config
	fetcher *actor.Fetcher
	climate *climate.Transformer
}

type options struct {
	transport  transport.Transport
	sink       diag.Sink
	onProgress func(done, total int)
}

// Option configures a Client.
type Option func(*options)

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithSink sets where diagnostics are delivered. The default logs them.
func WithSink(s diag.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithProgress registers a callback invoked as overview requests complete.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.onProgress = fn
	}
}

// New creates a Client. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = transport.NewHTTP(&transport.HTTPOptions{
			Timeout:   cfg.API.Timeout,
			UserAgent: cfg.API.UserAgent,
		})
	}
	if o.sink == nil {
		o.sink = diag.NewLogSink()
	}

	f := actor.NewFetcher(actor.Options{
		Server:         cfg.Server(),
		Transport:      o.transport,
		Sink:           o.sink,
		IgnoreWarnings: cfg.API.IgnoreWarnings,
		MaxConcurrency: cfg.API.MaxConcurrency,
		OnProgress:     o.onProgress,
	})

	return &Client{
		cfg:     cfg,
		fetcher: f,
		climate: climate.New(f),
	}, nil
}

// String identifies the server the client talks to.
func (c *Client) String() string {
	return fmt.Sprintf("OpenClimate(%s)", c.fetcher.Server())
}

// Server returns base URL plus API version.
func (c *Client) Server() string {
	return c.fetcher.Server()
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Overviews fetches raw overviews, one slot per id.
func (c *Client) Overviews(ctx context.Context, ids ...string) (actor.Collection, error) {
	return c.fetcher.Overviews(ctx, ids...)
}

// Emissions returns emissions per actor, optionally narrowed to one
// datasource.
func (c *Client) Emissions(ctx context.Context, datasourceID string, ids ...string) (*table.Table, error) {
	return c.climate.Emissions(ctx, datasourceID, ids...)
}

// EmissionsDatasets lists emissions datasources per actor.
func (c *Client) EmissionsDatasets(ctx context.Context, ids ...string) (*table.Table, error) {
	return c.climate.EmissionsDatasets(ctx, ids...)
}

// Population returns population per actor.
func (c *Client) Population(ctx context.Context, ids ...string) (*table.Table, error) {
	return c.climate.Population(ctx, ids...)
}

// GDP returns GDP per actor.
func (c *Client) GDP(ctx context.Context, ids ...string) (*table.Table, error) {
	return c.climate.GDP(ctx, ids...)
}

// Targets returns targets per actor.
func (c *Client) Targets(ctx context.Context, ids ...string) (*table.Table, error) {
	return c.climate.Targets(ctx, ids...)
}

// Parts returns the actors within actorID.
func (c *Client) Parts(ctx context.Context, actorID, partType string) (*table.Table, error) {
	return c.fetcher.Parts(ctx, actorID, partType)
}

// CountryCodes lists country codes, optionally filtered by name.
func (c *Client) CountryCodes(ctx context.Context, filter actor.CountryFilter) (*table.Table, error) {
	return c.fetcher.CountryCodes(ctx, filter)
}

// Search finds actors by query, identifier or name.
func (c *Client) Search(ctx context.Context, p actor.SearchParams) (*table.Table, error) {
	return c.fetcher.Search(ctx, p)
}

// Transformer exposes the section pipelines, e.g. for dispatch by name.
func (c *Client) Transformer() *climate.Transformer {
	return c.climate
}
