// internal/session/sanitize.go
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/fivealive/server/internal/game"
	"github.com/fivealive/server/internal/models"
	"github.com/fivealive/server/internal/room"
)

// The server never trusts clients with information they should not render.
// Every outbound snapshot is rebuilt per recipient: the recipient's own hand
// is sent in full, every other hand is replaced by same-length opaque
// placeholders, and the draw pile is reduced to a count.

// PlayerView is the per-recipient projection of one player.
type PlayerView struct {
	ID             uuid.UUID     `json:"id"`
	Username       string        `json:"username"`
	Hand           []models.Card `json:"hand"`
	LivesRemaining int           `json:"livesRemaining"`
	AliveMarkers   []bool        `json:"aliveMarkers"`
	IsEliminated   bool          `json:"isEliminated"`
	IsHost         bool          `json:"isHost"`
	IsMuted        bool          `json:"isMuted"`
	IsConnected    bool          `json:"isConnected"`
}

// GameView is the per-recipient projection of a running game. YourHand
// duplicates the recipient's hand at the top level for client convenience.
type GameView struct {
	RoomID             string         `json:"roomId"`
	Players            []PlayerView   `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	RunningTotal       int            `json:"runningTotal"`
	Direction          game.Direction `json:"direction"`
	DiscardPile        []models.Card  `json:"discardPile"`
	DeckCount          int            `json:"deckCount"`
	Phase              game.Phase     `json:"phase"`
	Winner             *PlayerView    `json:"winner,omitempty"`
	YourHand           []models.Card  `json:"yourHand"`
}

// RoomView is the projection of a room sent on create/join. No password
// material ever leaves the server.
type RoomView struct {
	ID          string       `json:"id"`
	HostID      uuid.UUID    `json:"hostId"`
	Players     []PlayerView `json:"players"`
	MaxPlayers  int          `json:"maxPlayers"`
	HasPassword bool         `json:"hasPassword"`
	Phase       game.Phase   `json:"phase"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// sanitizePlayer projects one player for the given recipient. Another
// player's hand becomes a same-length run of hidden cards so clients can
// still render card backs and counts.
func sanitizePlayer(p *models.Player, recipientID uuid.UUID) PlayerView {
	hand := p.Hand
	if p.ID != recipientID {
		hand = make([]models.Card, len(p.Hand))
		for i := range hand {
			hand[i] = models.Card{Kind: models.CardHidden, DisplayLabel: "?"}
		}
	}
	return PlayerView{
		ID:             p.ID,
		Username:       p.Username,
		Hand:           hand,
		LivesRemaining: p.LivesRemaining,
		AliveMarkers:   p.AliveMarkers,
		IsEliminated:   p.IsEliminated,
		IsHost:         p.IsHost,
		IsMuted:        p.IsMuted,
		IsConnected:    p.IsConnected,
	}
}

// sanitizeGame projects the game state for one recipient.
func sanitizeGame(gs *game.GameState, recipientID uuid.UUID) GameView {
	players := make([]PlayerView, len(gs.Players))
	var yourHand []models.Card
	for i, p := range gs.Players {
		players[i] = sanitizePlayer(p, recipientID)
		if p.ID == recipientID {
			yourHand = p.Hand
		}
	}
	view := GameView{
		RoomID:             gs.RoomID,
		Players:            players,
		CurrentPlayerIndex: gs.CurrentPlayerIndex,
		RunningTotal:       gs.RunningTotal,
		Direction:          gs.Direction,
		DiscardPile:        gs.DiscardPile,
		DeckCount:          gs.DeckCount,
		Phase:              gs.Phase,
		YourHand:           yourHand,
	}
	if gs.Winner != nil {
		w := sanitizePlayer(gs.Winner, recipientID)
		view.Winner = &w
	}
	return view
}

// sanitizeRoom projects the room for one recipient.
func sanitizeRoom(r *room.Room, recipientID uuid.UUID) RoomView {
	players := make([]PlayerView, 0, len(r.Players()))
	for _, p := range r.Players() {
		players = append(players, sanitizePlayer(p, recipientID))
	}
	return RoomView{
		ID:          r.ID,
		HostID:      r.HostID,
		Players:     players,
		MaxPlayers:  r.MaxPlayers,
		HasPassword: r.HasPassword(),
		Phase:       r.Phase(),
		CreatedAt:   r.CreatedAt,
	}
}
