package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

func wsURL(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitClients(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", b.Clients(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func recvEvent(t *testing.T, c *Client) source.Event[key.Code] {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("event channel closed early")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return source.Event[key.Code]{}
}

func TestBroadcastToClient(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := Dial(ctx, wsURL(t, srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	waitClients(t, b, 1)

	now := time.Now()
	b.Publish(source.Event[key.Code]{Time: now, Key: key.Space, Pressed: true})
	b.Publish(source.Event[key.Code]{Time: now, Key: key.Space, Pressed: false})

	press := recvEvent(t, c)
	if press.Key != key.Space || !press.Pressed {
		t.Errorf("first event = {%v %v}, want {SPACE true}", press.Key, press.Pressed)
	}
	release := recvEvent(t, c)
	if release.Key != key.Space || release.Pressed {
		t.Errorf("second event = {%v %v}, want {SPACE false}", release.Key, release.Pressed)
	}
}

func TestClientDropsUnknownKeys(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	c, err := Dial(context.Background(), wsURL(t, srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	waitClients(t, b, 1)

	// key.Code(999) has no name, so the frame cannot be resolved on
	// the receiving side and must be skipped.
	b.Publish(source.Event[key.Code]{Time: time.Now(), Key: key.Code(999), Pressed: true})
	b.Publish(source.Event[key.Code]{Time: time.Now(), Key: key.Enter, Pressed: true})

	ev := recvEvent(t, c)
	if ev.Key != key.Enter {
		t.Errorf("received key %v, want ENTER", ev.Key)
	}
}

func TestClientClose(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	c, err := Dial(context.Background(), wsURL(t, srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	waitClients(t, b, 1)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	select {
	case _, ok := <-c.Events():
		if ok {
			t.Error("received event after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after Close")
	}
}

func TestDialFailsFast(t *testing.T) {
	if _, err := Dial(context.Background(), "ws://127.0.0.1:1/events"); err == nil {
		t.Fatal("Dial() to dead address succeeded, want error")
	}
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c, err := Dial(ctx, wsURL(t, srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	waitClients(t, b, 1)

	// Stop the client before tearing the server down so it does not
	// sit in its reconnect loop.
	c.Close()
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	cancel()

	if got := b.Clients(); got != 0 {
		t.Errorf("Clients() after Close = %d, want 0", got)
	}

	// Publishing to a closed broadcaster is a no-op.
	b.Publish(source.Event[key.Code]{Time: time.Now(), Key: key.A, Pressed: true})
}

func TestSessionStable(t *testing.T) {
	b := NewBroadcaster()
	if b.Session() == "" {
		t.Fatal("Session() is empty")
	}
	if b.Session() != b.Session() {
		t.Error("Session() changed between calls")
	}
}
