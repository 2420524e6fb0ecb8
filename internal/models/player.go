// internal/models/player.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is a per-room participant. The instance is created when the player
// creates or joins a room and is owned by the room's roster until a game
// starts, after which the authoritative copy lives in the GameState player
// list.
type Player struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Hand           []Card    `json:"hand"`
	LivesRemaining int       `json:"livesRemaining"`
	// AliveMarkers are the five life tokens. The count of true entries always
	// equals LivesRemaining.
	AliveMarkers []bool `json:"aliveMarkers"`
	IsEliminated bool   `json:"isEliminated"`
	IsHost       bool   `json:"isHost"`
	IsMuted      bool   `json:"isMuted"`
	IsConnected  bool   `json:"isConnected"`

	Conn *websocket.Conn `json:"-"`
}

// NewPlayer builds a fresh participant with a full set of life markers.
func NewPlayer(id uuid.UUID, username string, isHost bool, conn *websocket.Conn) *Player {
	markers := make([]bool, InitialLives)
	for i := range markers {
		markers[i] = true
	}
	return &Player{
		ID:             id,
		Username:       username,
		Hand:           []Card{},
		LivesRemaining: InitialLives,
		AliveMarkers:   markers,
		IsHost:         isHost,
		IsConnected:    true,
		Conn:           conn,
	}
}
