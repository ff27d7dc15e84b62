// Package message defines the typed wire messages exchanged with the drawing
// game server and the codec that maps them to their tagged JSON frames.
package message

// Wire type discriminators. Every frame carries one of these in its "type"
// field.
const (
	TypeChatMessage          = "TYPE_CHAT_MESSAGE"
	TypeDrawData             = "TYPE_DRAW_DATA"
	TypeDrawAction           = "TYPE_DRAW_ACTION"
	TypeAnnouncement         = "TYPE_ANNOUNCEMENT"
	TypeJoinRoomHandshake    = "TYPE_JOIN_ROOM_HANDSHAKE"
	TypeGameError            = "TYPE_GAME_ERROR"
	TypePhaseChange          = "TYPE_PHASE_CHANGE"
	TypeChosenWord           = "TYPE_CHOSEN_WORD"
	TypeGameState            = "TYPE_GAME_STATE"
	TypeNewWords             = "TYPE_NEW_WORDS"
	TypePlayersList          = "TYPE_PLAYERS_LIST"
	TypePing                 = "TYPE_PING"
	TypeDisconnectRequest    = "TYPE_DISCONNECT_REQUEST"
	TypeCurrentRoundDrawInfo = "TYPE_CURRENT_ROUND_DRAW_INFO"
)

// Phase is one discrete stage of a round's lifecycle. The server serializes
// it as the bare enum name.
type Phase string

const (
	PhaseWaitingForPlayers Phase = "WAITING_FOR_PLAYERS"
	PhaseWaitingForStart   Phase = "WAITING_FOR_START"
	PhaseNewRound          Phase = "NEW_ROUND"
	PhaseGameRunning       Phase = "GAME_RUNNING"
	PhaseShowWord          Phase = "SHOW_WORD"
)

// Announcement types.
const (
	AnnouncementPlayerGuessedWord = 0
	AnnouncementPlayerJoined      = 1
	AnnouncementPlayerLeft        = 2
	AnnouncementEverybodyGuessed  = 3
)

// Game error types.
const (
	ErrorRoomNotFound = 0
)

// ActionUndo is the only defined DrawAction action.
const ActionUndo = "ACTION_UNDO"

// Pointer motion events carried by DrawData. The values follow the original
// client's pointer constants and are fixed by the server protocol.
const (
	MotionDown = 0
	MotionUp   = 1
	MotionMove = 2
)

// Message is a decoded wire frame. Type returns the frame's discriminator
// tag.
type Message interface {
	Type() string
}

// ChatMessage is a chat line sent by a player.
type ChatMessage struct {
	From      string `json:"from"`
	RoomName  string `json:"roomName"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func (ChatMessage) Type() string { return TypeChatMessage }

// Announcement is a system notice shown inline with chat.
type Announcement struct {
	Message          string `json:"message"`
	Timestamp        int64  `json:"timestamp"`
	AnnouncementType int    `json:"announcementType"`
}

func (Announcement) Type() string { return TypeAnnouncement }

// DrawData is a single pointer motion event from the drawing player.
type DrawData struct {
	RoomName    string  `json:"roomName"`
	Color       int     `json:"color"`
	Thickness   float32 `json:"thickness"`
	FromX       float32 `json:"fromX"`
	FromY       float32 `json:"fromY"`
	ToX         float32 `json:"toX"`
	ToY         float32 `json:"toY"`
	MotionEvent int     `json:"motionEvent"`
}

func (DrawData) Type() string { return TypeDrawData }

// DrawAction is a non-path drawing command, currently only ActionUndo.
type DrawAction struct {
	Action string `json:"action"`
}

func (DrawAction) Type() string { return TypeDrawAction }

// ChosenWord announces the word picked for the running round.
type ChosenWord struct {
	ChosenWord string `json:"chosenWord"`
	RoomName   string `json:"roomName"`
}

func (ChosenWord) Type() string { return TypeChosenWord }

// GameError is a fatal protocol-level error for the session.
type GameError struct {
	ErrorType int `json:"errorType"`
}

func (GameError) Type() string { return TypeGameError }

// GameState carries the drawing player and word outside of phase
// transitions, used to catch up clients that join a running round.
type GameState struct {
	DrawingPlayer string `json:"drawingPlayer"`
	Word          string `json:"word"`
}

func (GameState) Type() string { return TypeGameState }

// JoinRoomHandshake establishes identity right after connection open.
// ClientID is durable across reconnects so the server can tell rejoining
// clients from new ones.
type JoinRoomHandshake struct {
	Username string `json:"username"`
	RoomName string `json:"roomName"`
	ClientID string `json:"clientId"`
}

func (JoinRoomHandshake) Type() string { return TypeJoinRoomHandshake }

// NewWords offers three words to the drawing player to choose from.
type NewWords struct {
	NewWords []string `json:"newWords"`
}

func (NewWords) Type() string { return TypeNewWords }

// PhaseChange moves the game to a new phase. A nil Phase only syncs the
// remaining time of the current phase.
type PhaseChange struct {
	Phase         *Phase `json:"phase"`
	Time          int64  `json:"time"`
	DrawingPlayer string `json:"drawingPlayer,omitempty"`
}

func (PhaseChange) Type() string { return TypePhaseChange }

// Ping is the keepalive probe; the client answers with a Ping of its own.
type Ping struct{}

func (Ping) Type() string { return TypePing }

// PlayerData is one roster entry. Username is the identity key.
type PlayerData struct {
	Username  string `json:"username"`
	IsDrawing bool   `json:"isDrawing"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

// PlayersList is a full roster snapshot.
type PlayersList struct {
	Players []PlayerData `json:"players"`
}

func (PlayersList) Type() string { return TypePlayersList }

// RoundDrawInfo is the bulk catch-up payload for late joiners. Each entry is
// itself an encoded DrawData or DrawAction frame.
type RoundDrawInfo struct {
	Data []string `json:"data"`
}

func (RoundDrawInfo) Type() string { return TypeCurrentRoundDrawInfo }

// DisconnectRequest tells the server the client is leaving. It must be the
// last frame sent on a connection.
type DisconnectRequest struct{}

func (DisconnectRequest) Type() string { return TypeDisconnectRequest }

// Unknown is produced for frames whose discriminator the codec does not
// recognize. Consumers ignore it; it exists so an unknown tag never kills
// the pipeline.
type Unknown struct {
	Tag string
}

func (u Unknown) Type() string { return u.Tag }

// Room describes a lobby room. Consumed here only via its name; the full
// shape comes from the lobby REST API.
type Room struct {
	Name        string `json:"name"`
	MaxPlayers  int    `json:"maxPlayers"`
	PlayerCount int    `json:"playerCount"`
}
