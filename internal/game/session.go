// Package game derives client-side game state from the decoded message
// stream: the phase machine and its countdown, drawing player and word,
// canvas reconstruction, roster and chat views.
package game

import (
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mayurg/scribblearena/internal/diff"
	"github.com/mayurg/scribblearena/internal/draw"
	"github.com/mayurg/scribblearena/internal/logger"
	"github.com/mayurg/scribblearena/internal/message"
	"github.com/mayurg/scribblearena/internal/stream"
)

// ErrRoomNotFound ends the session: the server does not know the room, so
// no reconnect can ever succeed.
var ErrRoomNotFound = errors.New("room not found")

// ErrUndoDisabled is returned by Undo after the round's word was revealed.
var ErrUndoDisabled = errors.New("undo is disabled")

// Transport is the connection the session consumes messages from and sends
// on. *conn.Manager implements it.
type Transport interface {
	Messages() <-chan message.Message
	Send(message.Message) error
	Disconnect()
	Close()
}

// PhaseState is the phase machine's published state. A zero Phase means no
// PhaseChange has been received yet.
type PhaseState struct {
	Phase         message.Phase
	DrawingPlayer string
	Time          int64
}

// CanvasState is a snapshot of the reconstructed drawing.
type CanvasState struct {
	Segments []draw.PathSegment
	Active   *draw.PathSegment
}

// Session owns all game state for one joined room. State is mutated only on
// the Run goroutine; every concern is published on its own subscribable
// stream.
type Session struct {
	username string
	roomName string

	transport Transport
	codec     *message.Codec
	log       *logger.Logger
	tick      time.Duration

	canvas  *draw.Canvas
	chatLog []message.Message
	current PhaseState

	phase      *stream.Source[PhaseState]
	phaseTime  *stream.Source[int64]
	gameState  *stream.Source[message.GameState]
	newWords   *stream.Source[[]string]
	chosenWord *stream.Source[string]
	canvasSrc  *stream.Source[CanvasState]
	roster     *stream.Source[diff.Result[message.PlayerData]]
	chat       *stream.Source[diff.Result[message.Message]]

	rosterWorker *diff.Worker[message.PlayerData]
	chatWorker   *diff.Worker[message.Message]

	timer        *Countdown
	undoDisabled atomic.Bool

	done chan struct{}
	err  error
}

// NewSession wires a session for username in roomName on top of an
// established transport. The codec decodes the catch-up entries embedded in
// RoundDrawInfo payloads.
func NewSession(username, roomName string, transport Transport, codec *message.Codec, log *logger.Logger) *Session {
	s := &Session{
		username:   username,
		roomName:   roomName,
		transport:  transport,
		codec:      codec,
		log:        log,
		tick:       DefaultTick,
		canvas:     draw.NewCanvas(),
		phase:      stream.New[PhaseState](),
		phaseTime:  stream.New[int64](),
		gameState:  stream.New[message.GameState](),
		newWords:   stream.New[[]string](),
		chosenWord: stream.New[string](),
		canvasSrc:  stream.New[CanvasState](),
		roster:     stream.New[diff.Result[message.PlayerData]](),
		chat:       stream.New[diff.Result[message.Message]](),
		done:       make(chan struct{}),
	}
	s.rosterWorker = diff.NewWorker(playerKey, playerEqual, s.roster.Publish)
	s.chatWorker = diff.NewWorker(chatKey, chatEqual, s.chat.Publish)
	return s
}

// State streams, one per concern.
func (s *Session) Phase() (<-chan PhaseState, func())  { return s.phase.Subscribe() }
func (s *Session) PhaseTime() (<-chan int64, func())   { return s.phaseTime.Subscribe() }
func (s *Session) NewWords() (<-chan []string, func()) { return s.newWords.Subscribe() }
func (s *Session) ChosenWords() (<-chan string, func()) { return s.chosenWord.Subscribe() }
func (s *Session) Canvas() (<-chan CanvasState, func()) { return s.canvasSrc.Subscribe() }

func (s *Session) GameStates() (<-chan message.GameState, func()) {
	return s.gameState.Subscribe()
}
func (s *Session) Roster() (<-chan diff.Result[message.PlayerData], func()) {
	return s.roster.Subscribe()
}
func (s *Session) Chat() (<-chan diff.Result[message.Message], func()) {
	return s.chat.Subscribe()
}

// Done is closed when the session has torn down; Err then reports why.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err reports the terminal session error, if any. Only valid after Done.
func (s *Session) Err() error { return s.err }

// Run consumes the transport's message stream until it ends, dispatching
// every message on this single goroutine. It blocks; run it on its own
// goroutine.
func (s *Session) Run() {
	defer s.teardown()
	for msg := range s.transport.Messages() {
		s.handle(msg)
		if s.err != nil {
			return
		}
	}
}

func (s *Session) teardown() {
	s.cancelTimer()
	s.rosterWorker.Close()
	s.chatWorker.Close()
	s.phase.Close()
	s.phaseTime.Close()
	s.gameState.Close()
	s.newWords.Close()
	s.chosenWord.Close()
	s.canvasSrc.Close()
	s.roster.Close()
	s.chat.Close()
	s.canvas.Reset()
	s.chatLog = nil
	close(s.done)
}

func (s *Session) handle(msg message.Message) {
	switch m := msg.(type) {
	case message.ChatMessage:
		s.appendChat(m)
	case message.Announcement:
		s.appendChat(m)
	case message.DrawData:
		s.canvas.Apply(m)
		s.publishCanvas()
	case message.DrawAction:
		s.canvas.ApplyAction(m)
		s.publishCanvas()
	case message.PhaseChange:
		s.handlePhaseChange(m)
	case message.GameState:
		s.gameState.Publish(m)
	case message.NewWords:
		s.newWords.Publish(m.NewWords)
	case message.ChosenWord:
		s.undoDisabled.Store(true)
		s.chosenWord.Publish(m.ChosenWord)
	case message.PlayersList:
		s.rosterWorker.Submit(m.Players)
	case message.RoundDrawInfo:
		s.replayRound(m)
	case message.GameError:
		if m.ErrorType == message.ErrorRoomNotFound {
			s.log.Error("room not found, terminating session")
			s.err = ErrRoomNotFound
			s.transport.Close()
		}
	case message.Unknown:
		s.log.Debugf("ignoring unknown message type %q", m.Tag)
	default:
		s.log.Debugf("ignoring unhandled message type %q", msg.Type())
	}
}

func (s *Session) handlePhaseChange(m message.PhaseChange) {
	if m.Phase == nil {
		// Time-sync tick. No reason is known for the server to send one in
		// the lobby phase, so it is ignored there.
		if s.current.Phase == message.PhaseWaitingForPlayers {
			s.log.Warnf("time sync received while waiting for players, ignored")
			return
		}
		s.current.Time = m.Time
		s.phaseTime.Publish(m.Time)
		return
	}

	phase := *m.Phase
	if phase == message.PhaseNewRound || phase == message.PhaseShowWord {
		// The round can end mid-stroke; finish it off so it is not lost.
		s.canvas.FinalizeActive()
		if phase == message.PhaseNewRound {
			s.canvas.Reset()
			s.undoDisabled.Store(false)
		}
		s.publishCanvas()
	}

	s.current.Phase = phase
	s.current.Time = m.Time
	if m.DrawingPlayer != "" {
		s.current.DrawingPlayer = m.DrawingPlayer
	}
	s.phase.Publish(s.current)
	s.phaseTime.Publish(m.Time)

	s.cancelTimer()
	if phase != message.PhaseWaitingForPlayers {
		s.timer = newCountdown(m.Time, s.tick, s.phaseTime.Publish)
	}
}

// cancelTimer stops the countdown synchronously; a new timer never starts
// while an old one can still emit.
func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
}

// replayRound rebuilds the canvas from a catch-up payload sent to clients
// joining mid-round. Each entry is its own encoded frame; malformed or
// unexpected entries are skipped so one bad entry cannot abort the whole
// reconstruction.
func (s *Session) replayRound(info message.RoundDrawInfo) {
	entries := make([]message.Message, 0, len(info.Data))
	for _, raw := range info.Data {
		m, err := s.codec.Decode([]byte(raw))
		if err != nil {
			s.log.Warnf("skipping malformed round draw entry: %v", err)
			continue
		}
		switch m.(type) {
		case message.DrawData, message.DrawAction:
			entries = append(entries, m)
		default:
			s.log.Warnf("skipping round draw entry of type %q", m.Type())
		}
	}
	s.canvas.Replay(entries)
	s.publishCanvas()
}

func (s *Session) appendChat(m message.Message) {
	s.chatLog = append(s.chatLog, m)
	// The worker diffs against the previous snapshot, so hand it a copy the
	// next append cannot touch.
	s.chatWorker.Submit(append([]message.Message(nil), s.chatLog...))
}

func (s *Session) publishCanvas() {
	s.canvasSrc.Publish(CanvasState{
		Segments: s.canvas.Segments(),
		Active:   s.canvas.Active(),
	})
}

// SendChat submits a chat line. Empty messages are dropped.
func (s *Session) SendChat(text string) error {
	if text == "" {
		return nil
	}
	return s.transport.Send(message.ChatMessage{
		From:      s.username,
		RoomName:  s.roomName,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ChooseWord picks one of the offered words for the round.
func (s *Session) ChooseWord(word string) error {
	return s.transport.Send(message.ChosenWord{ChosenWord: word, RoomName: s.roomName})
}

// Draw sends one pointer motion event. The canvas state published by this
// session reflects the server's broadcast stream; the drawing player's own
// live stroke is mirrored by the view layer.
func (s *Session) Draw(d message.DrawData) error {
	d.RoomName = s.roomName
	return s.transport.Send(d)
}

// Undo asks the server to retract the latest stroke. Rejected once the
// round's word has been revealed.
func (s *Session) Undo() error {
	if s.undoDisabled.Load() {
		return ErrUndoDisabled
	}
	return s.transport.Send(message.DrawAction{Action: message.ActionUndo})
}

// Disconnect leaves the room cleanly; the transport flushes a
// DisconnectRequest as its last frame.
func (s *Session) Disconnect() {
	s.transport.Disconnect()
}

func playerKey(p message.PlayerData) string { return p.Username }

func playerEqual(a, b message.PlayerData) bool { return a == b }

// chatKey identifies a log entry for diffing. Chat entries carry no server
// id, so identity is the full content tuple; announcements and chat lines
// can never collide because the prefix differs.
func chatKey(m message.Message) string {
	switch c := m.(type) {
	case message.ChatMessage:
		return "c|" + c.From + "|" + strconv.FormatInt(c.Timestamp, 10) + "|" + c.Message
	case message.Announcement:
		return "a|" + strconv.Itoa(c.AnnouncementType) + "|" + strconv.FormatInt(c.Timestamp, 10) + "|" + c.Message
	default:
		return "?|" + m.Type()
	}
}

func chatEqual(a, b message.Message) bool { return a == b }
