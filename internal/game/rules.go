// internal/game/rules.go
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fivealive/server/internal/deck"
	"github.com/fivealive/server/internal/models"
)

// Rejection is a user-rule violation: the intent was understood but illegal.
// It is surfaced to the originating connection only and leaves state
// untouched.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// StructuralError marks a programming-error path: state the coordinator
// claimed to hold does not match the engine's. It is fatal to the request,
// never to the process.
type StructuralError struct {
	Detail string
}

func (e *StructuralError) Error() string { return "structural error: " + e.Detail }

// IsRejection reports whether err is a user-rule rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

func reject(format string, args ...interface{}) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// ValidatePlay checks a proposed card play without mutating state. It rejects
// an unknown player, a game not in the playing phase, an eliminated player,
// an out-of-turn play, a card missing from the player's hand, and a number
// card that would push the running total past 21.
func (s *GameState) ValidatePlay(playerID uuid.UUID, card models.Card) error {
	player := s.PlayerByID(playerID)
	if player == nil {
		return reject("player not found")
	}
	if s.Phase != PhasePlaying {
		return reject("game is not in playing phase")
	}
	if player.IsEliminated {
		return reject("player is eliminated")
	}
	if s.CurrentPlayer().ID != playerID {
		return reject("not your turn")
	}
	if findCard(player.Hand, card.ID) < 0 {
		return reject("card not in hand")
	}
	if !deck.CanPlay(card, s.RunningTotal) {
		return reject("card would push total over %d", models.MaxTotal)
	}
	return nil
}

// ApplyPlay removes the card from the player's hand, applies its effect, and
// returns the ordered effect log. The caller must have validated the play;
// only the hand-membership re-check remains, and its failure is a
// StructuralError since it indicates a coordinator bug.
func (s *GameState) ApplyPlay(playerID, cardID uuid.UUID) ([]Effect, error) {
	player := s.PlayerByID(playerID)
	if player == nil {
		return nil, &StructuralError{Detail: fmt.Sprintf("player %s not in game %s", playerID, s.RoomID)}
	}
	idx := findCard(player.Hand, cardID)
	if idx < 0 {
		return nil, &StructuralError{Detail: fmt.Sprintf("card %s not in hand of player %s", cardID, playerID)}
	}

	card := player.Hand[idx]
	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	s.DiscardPile = append(s.DiscardPile, card)

	s.RunningTotal = deck.NewTotal(card, s.RunningTotal)
	effects := []Effect{CardPlayed{PlayerID: player.ID, Card: card, NewTotal: s.RunningTotal}}

	if card.IsWild() {
		effects = append(effects, s.applyWild(card, player)...)
	}

	if len(player.Hand) == 0 {
		// Going out: every other surviving player flips a life. The turn does
		// not advance; the acting player keeps playing once the coordinator
		// performs the redeal.
		for _, other := range s.Players {
			if other.ID == player.ID || other.IsEliminated {
				continue
			}
			effects = s.flipLife(other, "last-card", effects)
		}
		effects = append(effects, ReshuffleNeeded{PlayerID: player.ID})
	} else {
		s.CurrentPlayerIndex = s.nextIndex(s.CurrentPlayerIndex)
		effects = append(effects, TurnChanged{PlayerID: s.CurrentPlayer().ID})
	}

	effects = s.checkWin(effects)
	s.DeckCount = len(s.Deck)
	return effects, nil
}

// HandleCannotPlay resolves a "cannot play" claim: the player loses a life,
// the running total resets, and the turn advances. The engine re-validates
// the claim rather than trusting the caller; a hand holding any playable
// card is rejected.
func (s *GameState) HandleCannotPlay(playerID uuid.UUID) ([]Effect, error) {
	player := s.PlayerByID(playerID)
	if player == nil {
		return nil, reject("player not found")
	}
	if s.Phase != PhasePlaying {
		return nil, reject("game is not in playing phase")
	}
	if player.IsEliminated {
		return nil, reject("player is eliminated")
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, reject("not your turn")
	}
	if deck.HasPlayable(player.Hand, s.RunningTotal) {
		return nil, reject("hand still has a playable card")
	}

	var effects []Effect
	effects = s.flipLife(player, "cannot-play", effects)

	s.RunningTotal = 0
	s.CurrentPlayerIndex = s.nextIndex(s.CurrentPlayerIndex)
	effects = append(effects, TurnChanged{PlayerID: s.CurrentPlayer().ID})

	effects = s.checkWin(effects)
	s.DeckCount = len(s.Deck)
	return effects, nil
}

// Redeal pools all hands, the discard pile, and the deck, reshuffles, and
// deals fresh hands. Invoked by the coordinator after a ReshuffleNeeded
// effect. The running total is left alone; only the hand-in-redeal wild
// resets it.
func (s *GameState) Redeal() {
	hands := make([][]models.Card, len(s.Players))
	for i, p := range s.Players {
		hands[i] = p.Hand
	}
	newHands, newDeck := deck.RedealAll(hands, s.DiscardPile, s.Deck, models.InitialHandSize, s.rng)
	for i, p := range s.Players {
		p.Hand = newHands[i]
	}
	s.Deck = newDeck
	s.DeckCount = len(newDeck)
	s.DiscardPile = []models.Card{}
}

// applyWild executes a wild card's special effect. Effects that touch other
// players apply to every other non-eliminated player in seat order.
func (s *GameState) applyWild(card models.Card, actor *models.Player) []Effect {
	var effects []Effect

	switch card.WildType {
	case models.WildDrawOne, models.WildDrawTwo:
		n := 1
		if card.WildType == models.WildDrawTwo {
			n = 2
		}
		for _, p := range s.Players {
			if p.ID == actor.ID || p.IsEliminated {
				continue
			}
			drawn, remaining := deck.Draw(s.Deck, n)
			s.Deck = remaining
			s.DeckCount = len(remaining)
			p.Hand = append(p.Hand, drawn...)
			effects = append(effects, DrawCards{PlayerID: p.ID, Count: len(drawn)})
		}

	case models.WildReverse:
		if s.Direction == Clockwise {
			s.Direction = Counterclockwise
		} else {
			s.Direction = Clockwise
		}
		effects = append(effects, DirectionReversed{Direction: s.Direction})

	case models.WildSkip:
		// Advance one seat here; the normal post-play advance adds the
		// second, so the skipped player's turn never comes up.
		skipped := s.nextIndex(s.CurrentPlayerIndex)
		effects = append(effects, PlayerSkipped{PlayerID: s.Players[skipped].ID})
		s.CurrentPlayerIndex = skipped

	case models.WildPassMeBy:
		passed := s.nextIndex(s.CurrentPlayerIndex)
		s.CurrentPlayerIndex = passed
		effects = append(effects, PlayerPassed{PlayerID: s.Players[passed].ID})

	case models.WildBomb:
		for _, p := range s.Players {
			if p.ID == actor.ID || p.IsEliminated {
				continue
			}
			if i, ok := deck.FirstZero(p.Hand); ok {
				zero := p.Hand[i]
				p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
				s.DiscardPile = append(s.DiscardPile, zero)
				effects = append(effects, BombDefended{PlayerID: p.ID, Discarded: zero})
			} else {
				effects = s.flipLife(p, "bomb", effects)
			}
		}

	case models.WildHandInRedeal:
		s.Redeal()
		s.RunningTotal = 0
		effects = append(effects, HandInRedeal{DeckCount: s.DeckCount})
	}

	return effects
}

// flipLife flips one alive marker for the player and appends the resulting
// effects. A player already at zero lives is left untouched.
func (s *GameState) flipLife(p *models.Player, reason string, effects []Effect) []Effect {
	if p.LivesRemaining <= 0 {
		return effects
	}
	p.LivesRemaining--
	for i, alive := range p.AliveMarkers {
		if alive {
			p.AliveMarkers[i] = false
			break
		}
	}
	effects = append(effects, LifeFlipped{PlayerID: p.ID, LivesRemaining: p.LivesRemaining, Reason: reason})
	if p.LivesRemaining == 0 {
		p.IsEliminated = true
		effects = append(effects, PlayerEliminated{PlayerID: p.ID})
	}
	return effects
}

// checkWin finishes the game once exactly one non-eliminated player remains.
func (s *GameState) checkWin(effects []Effect) []Effect {
	if s.Phase != PhasePlaying {
		return effects
	}
	alive := s.alivePlayers()
	if len(alive) != 1 {
		return effects
	}
	s.Winner = alive[0]
	s.Phase = PhaseFinished
	s.FinishedAt = time.Now()
	return append(effects, GameOver{PlayerID: alive[0].ID, Username: alive[0].Username})
}

func findCard(hand []models.Card, id uuid.UUID) int {
	for i, c := range hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}
