// internal/game/state.go

// Package game implements the authoritative 5 Alive rule engine: the
// per-room GameState, validation and application of plays, and the ordered
// effect log broadcast to clients.
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fivealive/server/internal/deck"
	"github.com/fivealive/server/internal/models"
)

// Phase is the lifecycle state of a room's game.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Direction is the turn rotation order.
type Direction string

const (
	Clockwise        Direction = "clockwise"
	Counterclockwise Direction = "counterclockwise"
)

// GameState is the authoritative state of one running game. It exclusively
// owns its player list once created; the room only reads players through it.
// All mutation happens under the owning room's lock, one inbound intent at a
// time.
type GameState struct {
	RoomID string `json:"roomId"`
	// Players in seat order; the order defines turn rotation.
	Players            []*models.Player `json:"players"`
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	RunningTotal       int              `json:"runningTotal"`
	Direction          Direction        `json:"direction"`
	DiscardPile        []models.Card    `json:"discardPile"`
	// Deck is server-only and never serialized; DeckCount is its public
	// mirror.
	Deck      []models.Card  `json:"-"`
	DeckCount int            `json:"deckCount"`
	Phase     Phase          `json:"phase"`
	Winner    *models.Player `json:"winner"`

	CreatedAt  time.Time `json:"createdAt"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`

	rng *rand.Rand
}

// NewGame shuffles a fresh deck, deals the starting hands, and returns the
// playing-phase state. The players become owned by the returned state. The
// source drives this game's shuffles and redeals; tests pass a seeded one.
func NewGame(roomID string, players []*models.Player, rng *rand.Rand) *GameState {
	cards := deck.New()
	deck.Shuffle(cards, rng)
	hands, remaining := deck.Deal(cards, len(players), models.InitialHandSize)

	for i, p := range players {
		p.Hand = hands[i]
		p.LivesRemaining = models.InitialLives
		p.AliveMarkers = make([]bool, models.InitialLives)
		for j := range p.AliveMarkers {
			p.AliveMarkers[j] = true
		}
		p.IsEliminated = false
	}

	now := time.Now()
	return &GameState{
		RoomID:             roomID,
		Players:            players,
		CurrentPlayerIndex: 0,
		RunningTotal:       0,
		Direction:          Clockwise,
		DiscardPile:        []models.Card{},
		Deck:               remaining,
		DeckCount:          len(remaining),
		Phase:              PhasePlaying,
		CreatedAt:          now,
		StartedAt:          now,
		rng:                rng,
	}
}

// CurrentPlayer returns the player whose turn it is.
func (s *GameState) CurrentPlayer() *models.Player {
	return s.Players[s.CurrentPlayerIndex]
}

// PlayerByID looks a player up by identity, or nil.
func (s *GameState) PlayerByID(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// alivePlayers returns the non-eliminated players in seat order.
func (s *GameState) alivePlayers() []*models.Player {
	alive := make([]*models.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.IsEliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

// nextIndex steps from the given seat in the current direction, skipping
// eliminated players and looping at most once around. If every other player
// is eliminated the starting index comes back unchanged.
func (s *GameState) nextIndex(from int) int {
	n := len(s.Players)
	step := 1
	if s.Direction == Counterclockwise {
		step = n - 1
	}
	idx := from
	for i := 0; i < n; i++ {
		idx = (idx + step) % n
		if !s.Players[idx].IsEliminated {
			return idx
		}
	}
	return from
}

// CardTotal counts every card across hands, discard, and deck. The rule
// engine conserves this at 54 outside of a single rule application.
func (s *GameState) CardTotal() int {
	total := len(s.DiscardPile) + len(s.Deck)
	for _, p := range s.Players {
		total += len(p.Hand)
	}
	return total
}
