// Package actor fetches actor overviews from the OpenClimate API.
//
// Overviews fans out one GET per id and joins the results back in input
// order. Unknown ids become absent slots plus a NotFound diagnostic; a
// transport fault fails the whole batch once every in-flight request has
// finished.
package actor

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/model"
	"github.com/openearth/openclimate/pkg/transport"
)

const tracerName = "github.com/openearth/openclimate/pkg/actor"

var jsonHeaders = map[string]string{"Accept": "application/json"}

// Collection holds one slot per requested id, in request order. A nil slot
// means the id was not found.
type Collection []*model.Overview

// Present returns the number of non-nil slots.
func (c Collection) Present() int {
	n := 0
	for _, o := range c {
		if o != nil {
			n++
		}
	}
	return n
}

// Options configures a Fetcher.
type Options struct {
	// Server is base URL plus API version, e.g. https://host/api/v1.
	Server string

	Transport transport.Transport

	// Sink receives NotFound and IncompleteData diagnostics. Nil discards.
	Sink diag.Sink

	// IgnoreWarnings suppresses diagnostics without changing results.
	IgnoreWarnings bool

	// MaxConcurrency bounds in-flight requests; 0 means one per id.
	MaxConcurrency int

	// OnProgress is called after each request completes. It may be called
	// from several goroutines at once.
	OnProgress func(done, total int)
}

// Fetcher retrieves overviews, parts and search results.
type Fetcher struct {
	server     string
	transport  transport.Transport
	sink       diag.Sink
	limit      int
	onProgress func(done, total int)
	tracer     trace.Tracer
}

// NewFetcher creates a Fetcher. A nil Transport uses transport.NewHTTP(nil).
func NewFetcher(opts Options) *Fetcher {
	tr := opts.Transport
	if tr == nil {
		tr = transport.NewHTTP(nil)
	}
	return &Fetcher{
		server:     strings.TrimRight(opts.Server, "/"),
		transport:  tr,
		sink:       diag.Gate(opts.Sink, opts.IgnoreWarnings),
		limit:      opts.MaxConcurrency,
		onProgress: opts.OnProgress,
		tracer:     otel.Tracer(tracerName),
	}
}

// Server returns the API root requests are made against.
func (f *Fetcher) Server() string {
	return f.server
}

// Sink returns the diagnostic sink after warning suppression is applied.
func (f *Fetcher) Sink() diag.Sink {
	return f.sink
}

type envelope[T any] struct {
	Data *T `json:"data"`
}

// Overviews fetches the overview of every id concurrently. The result has
// len(ids) slots with slot i belonging to ids[i].
func (f *Fetcher) Overviews(ctx context.Context, ids ...string) (Collection, error) {
	batchID := uuid.NewString()
	ctx, span := f.tracer.Start(ctx, "actor.overviews", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", len(ids)),
	))
	defer span.End()

	results := make(Collection, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	// No derived context: a failing request must not cancel its siblings.
	var g errgroup.Group
	if f.limit > 0 {
		g.SetLimit(f.limit)
	}

	var done atomic.Int64
	total := len(ids)
	for i, id := range ids {
		g.Go(func() error {
			defer f.progress(&done, total)

			ov, err := f.overview(ctx, batchID, id)
			if err != nil {
				return err
			}
			results[i] = ov
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("batch.found", results.Present()))
	return results, nil
}

func (f *Fetcher) progress(done *atomic.Int64, total int) {
	n := done.Add(1)
	if f.onProgress != nil {
		f.onProgress(int(n), total)
	}
}

// overview performs a single fetch. A missing payload is reported to the
// sink and returned as (nil, nil).
func (f *Fetcher) overview(ctx context.Context, batchID, id string) (*model.Overview, error) {
	ctx, span := f.tracer.Start(ctx, "actor.fetch", trace.WithAttributes(
		attribute.String("actor.id", id),
		attribute.String("batch.id", batchID),
	))
	defer span.End()

	var env envelope[model.Overview]
	status, err := f.getJSON(ctx, f.endpoint("actor", id), nil, &env)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var ce *errors.ClimateError
		if stderrors.As(err, &ce) {
			ce.WithContext("actor_id", id)
		}
		return nil, err
	}

	if env.Data == nil {
		f.sink.Emit(diag.NotFound(batchID, id))
		return nil, nil
	}
	return env.Data, nil
}

// endpoint joins path segments onto the server, escaping each one.
func (f *Fetcher) endpoint(segments ...string) string {
	var sb strings.Builder
	sb.WriteString(f.server)
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

// getJSON issues a GET and decodes the body into out. A 404 whose body does
// not decode leaves out untouched so callers treat it as "no data".
func (f *Fetcher) getJSON(ctx context.Context, rawURL string, query url.Values, out any) (int, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	status, body, err := f.transport.Get(ctx, rawURL, jsonHeaders)
	if err != nil {
		return status, classify(err, rawURL)
	}
	if status >= 500 {
		return status, errors.Transport(fmt.Errorf("server returned status %d", status), rawURL).
			WithContext("status", status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if status == 404 {
			return status, nil
		}
		return status, errors.BadPayload(err, rawURL, status)
	}
	return status, nil
}

func classify(err error, rawURL string) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(err, errors.CodeContextCanceled, "request canceled").WithContext("url", rawURL)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeTimeout, "request timed out").WithContext("url", rawURL)
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return errors.Wrap(err, errors.CodeTimeout, "request timed out").WithContext("url", rawURL)
	}
	return errors.Transport(err, rawURL)
}
