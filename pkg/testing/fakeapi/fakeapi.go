// Package fakeapi provides an in-memory transport.Transport that serves
// canned OpenClimate responses. It counts calls, tracks how many requests
// are in flight and can delay individual routes.
package fakeapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Server is the API root the fake answers for.
const Server = "https://api.test/api/v1"

// Response is the canned answer for one route.
type Response struct {
	Status int
	Body   string
	Delay  time.Duration
	Err    error
}

// Transport serves registered routes. Unregistered routes answer 404 with
// a body lacking "data".
type Transport struct {
	mu          sync.Mutex
	routes      map[string]Response
	calls       int
	inFlight    int
	maxInFlight int
	requested   []string
	completed   []string
}

// New creates an empty fake.
func New() *Transport {
	return &Transport{routes: make(map[string]Response)}
}

// Handle registers r for route, a path relative to Server optionally
// followed by a query string (e.g. "/actor/US" or "/search/actor?q=x").
func (t *Transport) Handle(route string, r Response) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.Status == 0 && r.Err == nil {
		r.Status = 200
	}
	t.routes[route] = r
	return t
}

// Actor registers the overview for id wrapped in a data envelope.
func (t *Transport) Actor(id, payload string) *Transport {
	return t.Handle("/actor/"+id, Response{Body: `{"data":` + payload + `}`})
}

// Delay sets the latency of an already registered route.
func (t *Transport) Delay(route string, d time.Duration) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.routes[route]
	if !ok {
		r = Response{Status: 404, Body: `{"detail":"Not Found"}`}
	}
	r.Delay = d
	t.routes[route] = r
	return t
}

// Get implements transport.Transport.
func (t *Transport) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	route := strings.TrimPrefix(rawURL, Server)

	t.mu.Lock()
	t.calls++
	t.inFlight++
	if t.inFlight > t.maxInFlight {
		t.maxInFlight = t.inFlight
	}
	t.requested = append(t.requested, route)
	r, ok := t.routes[route]
	if !ok {
		if path, _, found := strings.Cut(route, "?"); found {
			r, ok = t.routes[path]
		}
	}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.inFlight--
		t.completed = append(t.completed, route)
		t.mu.Unlock()
	}()

	if headers["Accept"] != "application/json" {
		return 0, nil, fmt.Errorf("fakeapi: missing Accept header for %s", route)
	}

	if !ok {
		return 404, []byte(`{"detail":"Not Found"}`), nil
	}

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}

	if r.Err != nil {
		return 0, nil, r.Err
	}
	return r.Status, []byte(r.Body), nil
}

// Calls returns the number of requests received.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// MaxInFlight returns the highest number of concurrent requests observed.
func (t *Transport) MaxInFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxInFlight
}

// Requested returns the routes requested, in arrival order.
func (t *Transport) Requested() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requested...)
}

// Completed returns the routes whose response was returned, in completion
// order.
func (t *Transport) Completed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.completed...)
}
