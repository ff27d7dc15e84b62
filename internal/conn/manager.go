// Package conn owns the websocket connection to the game server: dialing,
// the handshake-first guarantee, serialized outbound writes, keepalive
// echo, fixed-interval reconnection and clean teardown.
package conn

import (
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mayurg/scribblearena/internal/logger"
	"github.com/mayurg/scribblearena/internal/message"
	"github.com/mayurg/scribblearena/internal/stream"
)

const (
	defaultReconnectInterval = 3 * time.Second
	defaultDialTimeout       = 10 * time.Second
	writeDeadline            = 10 * time.Second
	sendBufferSize           = 256
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrClosed         = errors.New("connection manager closed")
)

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Closing
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// EventType classifies connection lifecycle events, which flow on a stream
// separate from decoded game messages.
type EventType int

const (
	EventConnecting EventType = iota
	EventOpened
	EventFailed
	EventClosed
)

type Event struct {
	Type EventType
	Err  error
}

// Config describes the session to establish. ClientID must be stable across
// reconnects; leave it empty to have the manager generate one that lives as
// long as the manager does.
type Config struct {
	URL               string
	Username          string
	RoomName          string
	ClientID          string
	ReconnectInterval time.Duration
	DialTimeout       time.Duration
}

// Manager drives the connection lifecycle
// Disconnected -> Connecting -> Connected -> (Closing|Failed) and schedules
// reconnects on failure until Close is called. Decoded inbound messages are
// delivered on Messages in arrival order; outbound messages submitted via
// Send are transmitted in submission order by a single writer goroutine.
type Manager struct {
	cfg   Config
	codec *message.Codec
	log   *logger.Logger

	events   *stream.Source[Event]
	inbound  chan message.Message
	outbound chan message.Message

	state   *stream.Source[State]
	stop    chan struct{}
	closing chan struct{} // closed once a DisconnectRequest is queued
	done    chan struct{}
}

func NewManager(cfg Config, codec *message.Codec, log *logger.Logger) *Manager {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = defaultReconnectInterval
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	m := &Manager{
		cfg:      cfg,
		codec:    codec,
		log:      log,
		events:   stream.New[Event](),
		inbound:  make(chan message.Message, sendBufferSize),
		outbound: make(chan message.Message, sendBufferSize),
		state:    stream.New[State](),
		stop:     make(chan struct{}),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.state.Publish(Disconnected)
	return m
}

// ClientID reports the durable rejoin identifier in use.
func (m *Manager) ClientID() string { return m.cfg.ClientID }

// Messages is the stream of decoded inbound game messages. It is closed
// when the manager shuts down.
func (m *Manager) Messages() <-chan message.Message { return m.inbound }

// Events returns the lifecycle event stream.
func (m *Manager) Events() (<-chan Event, func()) { return m.events.Subscribe() }

// State reports the current lifecycle state.
func (m *Manager) State() State {
	s, _ := m.state.Latest()
	return s
}

// Run connects and serves the session until Close (or Disconnect) ends it,
// redialing after the fixed reconnect interval on every failure. It blocks;
// run it on its own goroutine.
func (m *Manager) Run() {
	defer func() {
		m.setState(Disconnected)
		m.events.Publish(Event{Type: EventClosed})
		close(m.inbound)
		m.events.Close()
		m.state.Close()
		close(m.done)
	}()

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		m.setState(Connecting)
		m.events.Publish(Event{Type: EventConnecting})

		ws, err := m.dial()
		if err != nil {
			m.log.Warnf("dial %s failed: %v", m.cfg.URL, err)
			m.setState(Failed)
			m.events.Publish(Event{Type: EventFailed, Err: err})
			if !m.waitReconnect() {
				return
			}
			continue
		}

		m.setState(Connected)
		m.events.Publish(Event{Type: EventOpened})
		m.log.Infof("connected to %s as %s", m.cfg.URL, m.cfg.Username)

		err = m.serve(ws)
		select {
		case <-m.stop:
			return
		default:
		}
		m.setState(Failed)
		m.events.Publish(Event{Type: EventFailed, Err: err})
		m.log.Warnf("connection lost: %v", err)
		if !m.waitReconnect() {
			return
		}
	}
}

// Send queues a message for transmission. It never blocks; a full buffer is
// reported as an error rather than stalling the caller.
func (m *Manager) Send(msg message.Message) error {
	select {
	case <-m.closing:
		return ErrClosed
	case <-m.stop:
		return ErrClosed
	default:
	}
	select {
	case m.outbound <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Disconnect performs a clean shutdown: a DisconnectRequest is queued as the
// final outbound message and the manager stops once the writer has flushed
// it. No reconnect is scheduled.
func (m *Manager) Disconnect() {
	select {
	case <-m.closing:
		return
	case <-m.stop:
		return
	default:
	}
	m.setState(Closing)
	select {
	case m.outbound <- message.DisconnectRequest{}:
		close(m.closing)
	default:
		// Buffer full; nothing more can be flushed, drop the connection.
		close(m.closing)
		m.Close()
	}
}

// Close tears the connection down immediately without a DisconnectRequest
// and stops all reconnection attempts.
func (m *Manager) Close() {
	select {
	case <-m.stop:
		return
	default:
		close(m.stop)
	}
}

// Done is closed once Run has fully shut down.
func (m *Manager) Done() <-chan struct{} { return m.done }

func (m *Manager) setState(s State) { m.state.Publish(s) }

func (m *Manager) dial() (*websocket.Conn, error) {
	u, err := url.Parse(m.cfg.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("client_id", m.cfg.ClientID)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.DialTimeout}
	ws, _, err := dialer.Dial(u.String(), nil)
	return ws, err
}

// serve runs the read and write pumps for one established connection and
// returns when either fails or the manager stops.
func (m *Manager) serve(ws *websocket.Conn) error {
	connDone := make(chan struct{})
	writeErr := make(chan error, 1)

	go func() {
		writeErr <- m.writePump(ws, connDone)
	}()
	go func() {
		// Unblock a pending read when the manager stops.
		select {
		case <-m.stop:
			ws.Close()
		case <-connDone:
		}
	}()

	readErr := m.readPump(ws)
	close(connDone)
	ws.Close()
	if werr := <-writeErr; werr != nil && readErr == nil {
		return werr
	}
	return readErr
}

// writePump owns all writes on the connection. The room handshake goes out
// first, before anything queued, so the server can attribute every later
// frame. A DisconnectRequest ends the pump after it is flushed.
func (m *Manager) writePump(ws *websocket.Conn, connDone chan struct{}) error {
	handshake := message.JoinRoomHandshake{
		Username: m.cfg.Username,
		RoomName: m.cfg.RoomName,
		ClientID: m.cfg.ClientID,
	}
	if err := m.write(ws, handshake); err != nil {
		return err
	}

	for {
		select {
		case msg := <-m.outbound:
			if err := m.write(ws, msg); err != nil {
				return err
			}
			if _, isDisconnect := msg.(message.DisconnectRequest); isDisconnect {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeDeadline))
				m.Close()
				return nil
			}
		case <-connDone:
			return nil
		case <-m.stop:
			return nil
		}
	}
}

func (m *Manager) write(ws *websocket.Conn, msg message.Message) error {
	frame, err := m.codec.Encode(msg)
	if err != nil {
		// Encoding failures are programming errors in our own variants;
		// skip the frame rather than killing the connection.
		m.log.Errorf("encode outbound %s: %v", msg.Type(), err)
		return nil
	}
	ws.SetWriteDeadline(time.Now().Add(writeDeadline))
	return ws.WriteMessage(websocket.TextMessage, frame)
}

// readPump decodes inbound frames and hands them to the session pipeline.
// Keepalive Pings are answered here immediately and not forwarded; frames
// that fail to decode are logged and skipped.
func (m *Manager) readPump(ws *websocket.Conn) error {
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := m.codec.Decode(frame)
		if err != nil {
			m.log.Warnf("dropping undecodable frame: %v", err)
			continue
		}

		if _, isPing := msg.(message.Ping); isPing {
			if err := m.Send(message.Ping{}); err != nil {
				m.log.Warnf("ping reply not queued: %v", err)
			}
			continue
		}

		select {
		case m.inbound <- msg:
		case <-m.stop:
			return nil
		}
	}
}

// waitReconnect sleeps for the fixed backoff interval. It returns false if
// the manager was closed while waiting.
func (m *Manager) waitReconnect() bool {
	select {
	case <-m.closing:
		return false
	case <-m.stop:
		return false
	case <-time.After(m.cfg.ReconnectInterval):
		return true
	}
}
