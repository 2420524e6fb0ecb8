// internal/session/messages.go
package session

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Envelope is the outer frame of every client-to-server message. Data is
// decoded per intent type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client intent types.
const (
	IntentCreateRoom  = "create-room"
	IntentJoinRoom    = "join-room"
	IntentLeaveRoom   = "leave-room"
	IntentGetRooms    = "get-rooms"
	IntentStartGame   = "start-game"
	IntentPlayCard    = "play-card"
	IntentCannotPlay  = "cannot-play"
	IntentSendMessage = "send-message"
	IntentToggleMic   = "toggle-mic"
)

// CreateRoomPayload carries the create-room intent fields.
type CreateRoomPayload struct {
	Username   string `json:"username"`
	MaxPlayers int    `json:"maxPlayers"`
	Password   string `json:"password,omitempty"`
}

// JoinRoomPayload carries the join-room intent fields.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// PlayCardPayload names the hand card to play by identity.
type PlayCardPayload struct {
	CardID uuid.UUID `json:"cardId"`
}

// SendMessagePayload carries one chat line.
type SendMessagePayload struct {
	Message string `json:"message"`
}

// ToggleMicPayload carries the desired mute state.
type ToggleMicPayload struct {
	Muted bool `json:"muted"`
}

// EventType tags each server-to-client event.
type EventType string

const (
	EventRoomCreated      EventType = "room-created"
	EventRoomJoined       EventType = "room-joined"
	EventPlayerJoined     EventType = "player-joined"
	EventPlayerLeft       EventType = "player-left"
	EventHostChanged      EventType = "host-changed"
	EventRoomsList        EventType = "rooms-list"
	EventGameStarted      EventType = "game-started"
	EventGameEffect       EventType = "game-effect"
	EventGameStateUpdate  EventType = "game-state-update"
	EventMessageReceived  EventType = "message-received"
	EventPlayerMicChanged EventType = "player-mic-changed"
	EventError            EventType = "error"
)

// Event is the outer frame of every server-to-client message.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Error codes sent on the error event. Codes are stable; the human-readable
// message alongside them is not.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeCreateRoomFailed = "CREATE_ROOM_FAILED"
	CodeJoinRoomFailed   = "JOIN_ROOM_FAILED"
	CodeLeaveRoomFailed  = "LEAVE_ROOM_FAILED"
	CodeStartGameFailed  = "START_GAME_FAILED"
	CodeInvalidPlay      = "INVALID_PLAY"
	CodePlayCardFailed   = "PLAY_CARD_FAILED"
	CodeCannotPlayFailed = "CANNOT_PLAY_FAILED"
	CodeSendMsgFailed    = "SEND_MESSAGE_FAILED"
	CodeToggleMicFailed  = "TOGGLE_MIC_FAILED"
)

// ErrorData is the payload of an error event.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorEvent(code, message string) Event {
	return Event{Type: EventError, Data: ErrorData{Code: code, Message: message}}
}
