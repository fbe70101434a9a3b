package remote

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

const writeTimeout = 5 * time.Second

func newClientID() string {
	return uuid.NewString()
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcastLogger attaches a logger to the broadcaster.
func WithBroadcastLogger(log zerolog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		b.log = log
	}
}

// Broadcaster fans key events out to websocket subscribers. It is an
// http.Handler; mount it on the path clients dial.
type Broadcaster struct {
	up      websocket.Upgrader
	session string
	log     zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]string
	closed  bool
}

// NewBroadcaster returns a broadcaster with a fresh session ID.
func NewBroadcaster(opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		up: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		session: uuid.NewString(),
		log:     zerolog.Nop(),
		clients: make(map[*websocket.Conn]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Session returns the broadcaster's session ID.
func (b *Broadcaster) Session() string {
	return b.session
}

// Clients returns the number of connected subscribers.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// ServeHTTP upgrades the request and keeps the subscriber registered
// until its connection drops.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.up.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	hello, _ := sjson.Set("{}", "type", "hello")
	hello, _ = sjson.Set(hello, "session", b.session)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return
	}
	b.clients[conn] = ""
	err = b.write(conn, []byte(hello))
	b.mu.Unlock()
	if err != nil {
		b.drop(conn)
		return
	}

	// Inbound frames carry only the subscribe handshake; reading
	// until failure is what detects the disconnect.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if gjson.GetBytes(msg, "type").String() == "subscribe" {
			id := gjson.GetBytes(msg, "client").String()
			b.mu.Lock()
			if _, ok := b.clients[conn]; ok {
				b.clients[conn] = id
			}
			b.mu.Unlock()
			b.log.Info().Str("client", id).Msg("subscriber connected")
		}
	}
	b.drop(conn)
}

// Publish sends one event to every subscriber. Connections that fail
// to accept the write are dropped.
func (b *Broadcaster) Publish(ev source.Event[key.Code]) {
	frame, _ := sjson.Set("{}", "type", "event")
	frame, _ = sjson.Set(frame, "key", ev.Key.String())
	frame, _ = sjson.Set(frame, "pressed", ev.Pressed)
	frame, _ = sjson.Set(frame, "at", ev.Time.Format(time.RFC3339Nano))
	payload := []byte(frame)

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, id := range b.clients {
		if err := b.write(conn, payload); err != nil {
			b.log.Warn().Err(err).Str("client", id).Msg("dropping subscriber")
			delete(b.clients, conn)
			conn.Close()
		}
	}
}

// Pump publishes every event from src until the source ends.
func (b *Broadcaster) Pump(src source.Source[key.Code]) {
	for ev := range src.Events() {
		b.Publish(ev)
	}
}

// write sends one frame; callers hold b.mu.
func (b *Broadcaster) write(conn *websocket.Conn, payload []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Close disconnects every subscriber and rejects new ones.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for conn := range b.clients {
		conn.Close()
	}
	clear(b.clients)
	return nil
}
