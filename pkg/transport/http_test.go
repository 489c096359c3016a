package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTP_GetSendsHeaders(t *testing.T) {
	var gotAccept, gotAgent, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Team")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"actor_id":"US"}}`))
	}))
	defer srv.Close()

	tr := NewHTTP(&HTTPOptions{Headers: map[string]string{"X-Team": "climate"}, UserAgent: "test-agent"})
	status, body, err := tr.Get(context.Background(), srv.URL+"/actor/US", map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != `{"data":{"actor_id":"US"}}` {
		t.Errorf("body = %s", body)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotAgent != "test-agent" {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if gotExtra != "climate" {
		t.Errorf("X-Team = %q", gotExtra)
	}
}

func TestHTTP_NonOKReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer srv.Close()

	status, body, err := NewHTTP(nil).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if len(body) == 0 {
		t.Error("expected body on non-OK response")
	}
}

func TestHTTP_TimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tr := NewHTTP(&HTTPOptions{Timeout: 20 * time.Millisecond})
	if _, _, err := tr.Get(context.Background(), srv.URL, nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTP_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	if _, _, err := NewHTTP(nil).Get(context.Background(), addr, nil); err == nil {
		t.Fatal("expected connection error")
	}
}
