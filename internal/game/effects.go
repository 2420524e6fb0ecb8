// internal/game/effects.go
package game

import (
	"github.com/google/uuid"

	"github.com/fivealive/server/internal/models"
)

// EffectType tags each effect kind on the wire.
type EffectType string

const (
	EffectCardPlayed        EffectType = "card-played"
	EffectLifeFlipped       EffectType = "life-flipped"
	EffectPlayerEliminated  EffectType = "player-eliminated"
	EffectTurnChanged       EffectType = "turn-changed"
	EffectDirectionReversed EffectType = "direction-reversed"
	EffectPlayerSkipped     EffectType = "player-skipped"
	EffectPlayerPassed      EffectType = "player-passed"
	EffectDrawCards         EffectType = "draw-cards"
	EffectBombDefended      EffectType = "bomb-defended"
	EffectHandInRedeal      EffectType = "hand-in-redeal"
	EffectReshuffleNeeded   EffectType = "reshuffle-needed"
	EffectGameOver          EffectType = "game-over"
)

// Effect is one ordered consequence of a rule application. The sequence of
// effects produced by a play is part of the protocol contract: clients replay
// it in order as animations and log entries. Each kind is its own struct
// carrying exactly the fields it needs.
type Effect interface {
	EffectType() EffectType
}

// CardPlayed announces the played card and the resulting running total.
type CardPlayed struct {
	PlayerID uuid.UUID   `json:"playerId"`
	Card     models.Card `json:"card"`
	NewTotal int         `json:"newTotal"`
}

// LifeFlipped records one life lost by a player, with the cause.
type LifeFlipped struct {
	PlayerID       uuid.UUID `json:"playerId"`
	LivesRemaining int       `json:"livesRemaining"`
	Reason         string    `json:"reason,omitempty"`
}

// PlayerEliminated marks a player dropping to zero lives.
type PlayerEliminated struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// TurnChanged announces the player now holding the turn.
type TurnChanged struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// DirectionReversed carries the new rotation direction.
type DirectionReversed struct {
	Direction Direction `json:"direction"`
}

// PlayerSkipped names the player whose turn was skipped.
type PlayerSkipped struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// PlayerPassed names the player passed over by a pass-me-by.
type PlayerPassed struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// DrawCards records cards forced into a player's hand. Count may be lower
// than the wild demanded if the deck ran short.
type DrawCards struct {
	PlayerID uuid.UUID `json:"playerId"`
	Count    int       `json:"count"`
}

// BombDefended records a player discarding a 0 to survive a bomb.
type BombDefended struct {
	PlayerID  uuid.UUID   `json:"playerId"`
	Discarded models.Card `json:"cardDiscarded"`
}

// HandInRedeal announces that all cards were pooled, reshuffled, and redealt.
type HandInRedeal struct {
	DeckCount int `json:"deckCount"`
}

// ReshuffleNeeded signals that a player emptied their hand; the coordinator
// is expected to invoke the redeal next.
type ReshuffleNeeded struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// GameOver carries the winner of a finished game.
type GameOver struct {
	PlayerID uuid.UUID `json:"playerId"`
	Username string    `json:"username"`
}

func (CardPlayed) EffectType() EffectType        { return EffectCardPlayed }
func (LifeFlipped) EffectType() EffectType       { return EffectLifeFlipped }
func (PlayerEliminated) EffectType() EffectType  { return EffectPlayerEliminated }
func (TurnChanged) EffectType() EffectType       { return EffectTurnChanged }
func (DirectionReversed) EffectType() EffectType { return EffectDirectionReversed }
func (PlayerSkipped) EffectType() EffectType     { return EffectPlayerSkipped }
func (PlayerPassed) EffectType() EffectType      { return EffectPlayerPassed }
func (DrawCards) EffectType() EffectType         { return EffectDrawCards }
func (BombDefended) EffectType() EffectType      { return EffectBombDefended }
func (HandInRedeal) EffectType() EffectType      { return EffectHandInRedeal }
func (ReshuffleNeeded) EffectType() EffectType   { return EffectReshuffleNeeded }
func (GameOver) EffectType() EffectType          { return EffectGameOver }
