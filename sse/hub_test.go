package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/subtitler/component"
)

func startHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	hub := NewHub(nil, opts...)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e, ok := <-c.Events():
		if !ok {
			t.Fatal("expected an event, channel closed")
		}
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestClientFilter(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"", "run:abc", true},
		{"run:*", "run:abc", true},
		{"run:abc", "run:abc", true},
		{"run:abc", "run:def", false},
		{"[", "run:abc", false},
	}
	for _, tc := range tests {
		c := NewClient("c", tc.filter)
		if got := c.matches(tc.topic); got != tc.want {
			t.Errorf("filter %q topic %q: expected %v, got %v", tc.filter, tc.topic, tc.want, got)
		}
	}
}

func TestClientSendFull(t *testing.T) {
	c := NewClient("c", "")
	for i := 0; i < clientBuffer; i++ {
		if !c.send(Event{Name: "x"}) {
			t.Fatalf("expected send %d to succeed", i)
		}
	}
	if c.send(Event{Name: "overflow"}) {
		t.Error("expected send to fail once the buffer is full")
	}
}

func TestHubDeliversToMatchingClients(t *testing.T) {
	hub := startHub(t)
	one := NewClient("one", "run:1")
	all := NewClient("all", "run:*")
	hub.Register(one)
	hub.Register(all)

	if !hub.Publish("run:2", EventTransition, []byte(`{"to":"file_saved"}`)) {
		t.Fatal("expected publish to be queued")
	}
	if e := receive(t, all); e.Topic != "run:2" || string(e.Data) != `{"to":"file_saved"}` {
		t.Errorf("unexpected event %+v", e)
	}

	hub.Publish("run:1", EventTransition, []byte("x"))
	if e := receive(t, one); e.Topic != "run:1" {
		t.Errorf("expected run:1, got %s", e.Topic)
	}
	receive(t, all)

	select {
	case e := <-one.Events():
		t.Errorf("expected no event for run:2 on the run:1 client, got %+v", e)
	default:
	}
	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := startHub(t)
	c := NewClient("c", "")
	hub.Register(c)
	hub.Unregister(c)

	if _, ok := <-c.Events(); ok {
		t.Error("expected channel closed after unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()
	c := NewClient("c", "")
	hub.Register(c)

	hub.Stop()
	hub.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return after Stop")
	}
	if _, ok := <-c.Events(); ok {
		t.Error("expected clients closed on stop")
	}
	if hub.Register(NewClient("late", "")) {
		t.Error("expected Register to fail after stop")
	}
	if hub.Publish("run:1", EventTransition, nil) {
		t.Error("expected Publish to fail after stop")
	}
	hub.Unregister(c)
}

func TestServeStreamsEvents(t *testing.T) {
	hub := startHub(t, WithKeepAlive(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(hub, w, r, "run:42")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if l := lines.Text(); l != "" {
				return l
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	if l := next(); l != "event: connected" {
		t.Fatalf("expected connected event, got %q", l)
	}
	if l := next(); !strings.Contains(l, `"filter":"run:42"`) {
		t.Errorf("expected filter in hello, got %q", l)
	}

	hub.Publish("run:7", EventTransition, []byte(`{"run_id":"7"}`))
	hub.Publish("run:42", EventTransition, []byte(`{"run_id":"42"}`))
	if l := next(); l != "event: transition" {
		t.Fatalf("expected transition event, got %q", l)
	}
	if l := next(); l != `data: {"run_id":"42"}` {
		t.Errorf("expected only the matching run, got %q", l)
	}
}

func TestServeAfterStop(t *testing.T) {
	hub := NewHub(nil)
	hub.Stop()
	rec := httptest.NewRecorder()
	Serve(hub, rec, httptest.NewRequest(http.MethodGet, "/", nil), "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestComponentLifecycle(t *testing.T) {
	c := NewComponent("/api/v1/events", nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy || h.Message != "0 clients connected" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := c.Describe(); d.Type != "sse" || d.Details != "path=/api/v1/events" {
		t.Errorf("unexpected description %+v", d)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}
