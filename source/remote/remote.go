// Package remote streams key events over websockets.
//
// A Broadcaster publishes events captured on one machine; a Client
// subscribes and exposes them as a source on another. Frames are small
// JSON objects:
//
//	{"type":"hello","session":"..."}           server, on connect
//	{"type":"event","key":"SPACE","pressed":true,"at":"..."}
//	{"type":"subscribe","client":"..."}        client, on connect
//
// Event timestamps on the wire are informational; the receiving side
// stamps events with its own clock, since repeat timing must live in
// one clock domain.
package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

const (
	defaultHandshakeTimeout = 5 * time.Second

	// Reconnect backoff bounds.
	backoffInitial = 500 * time.Millisecond
	backoffMax     = 10 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger to the client.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithHandshakeTimeout bounds the websocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.handshake = d
		}
	}
}

// Client subscribes to a Broadcaster and exposes the received events
// as a Source. Lost connections are re-dialed with capped exponential
// backoff until the context ends or the client is closed.
type Client struct {
	url       string
	id        string
	handshake time.Duration
	log       zerolog.Logger

	ch   chan source.Event[key.Code]
	done chan struct{}
	once sync.Once
}

// Dial connects to a broadcaster at url ("ws://host:port/events"). The
// initial connection failure is returned synchronously; afterward the
// client reconnects on its own.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	c := &Client{
		url:       url,
		handshake: defaultHandshakeTimeout,
		log:       zerolog.Nop(),
		ch:        make(chan source.Event[key.Code]),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.id = newClientID()

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}

	go c.run(ctx, conn)
	return c, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.handshake}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	sub, _ := sjson.Set("{}", "type", "subscribe")
	sub, _ = sjson.Set(sub, "client", c.id)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(sub)); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Client) run(ctx context.Context, conn *websocket.Conn) {
	defer close(c.ch)

	backoff := backoffInitial
	for {
		// ReadMessage only unblocks when the connection dies, so a
		// stopper closes it on shutdown.
		stop := make(chan struct{})
		go func(conn *websocket.Conn) {
			select {
			case <-ctx.Done():
			case <-c.done:
			case <-stop:
				return
			}
			conn.Close()
		}(conn)

		err := c.readLoop(conn)
		close(stop)
		conn.Close()
		if err == nil || ctx.Err() != nil {
			return
		}

		c.log.Warn().Err(err).Str("url", c.url).Msg("connection lost, reconnecting")

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(backoff):
			}

			next, err := c.dial(ctx)
			if err == nil {
				conn = next
				backoff = backoffInitial
				break
			}
			c.log.Warn().Err(err).Dur("backoff", backoff).Msg("reconnect failed")
			if backoff *= 2; backoff > backoffMax {
				backoff = backoffMax
			}
		}
	}
}

// readLoop consumes frames until the connection fails or the client
// shuts down. A nil return means shutdown.
func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return err
			}
		}

		switch gjson.GetBytes(msg, "type").String() {
		case "hello":
			c.log.Debug().Str("session", gjson.GetBytes(msg, "session").String()).Msg("subscribed")

		case "event":
			name := gjson.GetBytes(msg, "key").String()
			code, ok := key.FromName(name)
			if !ok {
				c.log.Warn().Str("key", name).Msg("dropping event for unknown key")
				continue
			}
			ev := source.Event[key.Code]{
				Time:    time.Now(),
				Key:     code,
				Pressed: gjson.GetBytes(msg, "pressed").Bool(),
			}
			select {
			case c.ch <- ev:
			case <-c.done:
				return nil
			}

		default:
			// Unknown frames are forward-compatibility; skip them.
		}
	}
}

// Events returns the received event channel.
func (c *Client) Events() <-chan source.Event[key.Code] {
	return c.ch
}

// Close stops the client and ends the event channel.
func (c *Client) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return nil
}
