// internal/game/engine_test.go
package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivealive/server/internal/models"
)

func newTestGame(t *testing.T, playerCount int) *GameState {
	t.Helper()
	players := make([]*models.Player, playerCount)
	for i := range players {
		players[i] = models.NewPlayer(uuid.New(), fmt.Sprintf("player%d", i), i == 0, nil)
	}
	return NewGame("TEST01", players, rand.New(rand.NewSource(1)))
}

func number(value int) models.Card {
	return models.Card{ID: uuid.New(), Kind: models.CardNumber, Value: value, DisplayLabel: fmt.Sprintf("%d", value)}
}

func wild(wt models.WildType) models.Card {
	return models.Card{ID: uuid.New(), Kind: models.CardWild, WildType: wt}
}

// give places a card in the player's hand and returns it.
func give(p *models.Player, c models.Card) models.Card {
	p.Hand = append(p.Hand, c)
	return c
}

func effectTypes(effects []Effect) []EffectType {
	out := make([]EffectType, len(effects))
	for i, e := range effects {
		out[i] = e.EffectType()
	}
	return out
}

func TestNewGameDealsTenEach(t *testing.T) {
	gs := newTestGame(t, 4)

	assert.Equal(t, PhasePlaying, gs.Phase)
	assert.Equal(t, 0, gs.CurrentPlayerIndex)
	assert.Equal(t, 0, gs.RunningTotal)
	assert.Equal(t, Clockwise, gs.Direction)
	assert.Empty(t, gs.DiscardPile)
	assert.Equal(t, models.DeckSize-4*models.InitialHandSize, gs.DeckCount)

	for _, p := range gs.Players {
		assert.Len(t, p.Hand, models.InitialHandSize)
		assert.Equal(t, models.InitialLives, p.LivesRemaining)
		assert.Equal(t, []bool{true, true, true, true, true}, p.AliveMarkers)
		assert.False(t, p.IsEliminated)
	}
	assert.Equal(t, models.DeckSize, gs.CardTotal())
}

func TestLegalNumberPlayEffectOrder(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.RunningTotal = 15
	card := give(gs.Players[0], number(5))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectTurnChanged}, effectTypes(effects))
	played := effects[0].(CardPlayed)
	assert.Equal(t, 20, played.NewTotal)
	assert.Equal(t, card.ID, played.Card.ID)
	assert.Equal(t, gs.Players[1].ID, effects[1].(TurnChanged).PlayerID)
	assert.Equal(t, 20, gs.RunningTotal)
	assert.Equal(t, 1, gs.CurrentPlayerIndex)
}

func TestValidatePlayRejectsOverLimit(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.RunningTotal = 17
	card := give(gs.Players[0], number(5))

	err := gs.ValidatePlay(gs.Players[0].ID, card)
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	// A rejection leaves state untouched.
	assert.Equal(t, 17, gs.RunningTotal)
	assert.Equal(t, 0, gs.CurrentPlayerIndex)
}

func TestValidatePlayRejections(t *testing.T) {
	gs := newTestGame(t, 3)
	cardOfB := give(gs.Players[1], number(1))

	err := gs.ValidatePlay(gs.Players[1].ID, cardOfB)
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "not your turn")

	err = gs.ValidatePlay(uuid.New(), cardOfB)
	assert.True(t, IsRejection(err))

	notInHand := number(1)
	err = gs.ValidatePlay(gs.Players[0].ID, notInHand)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "not in hand")

	gs.Players[0].IsEliminated = true
	someCard := give(gs.Players[0], number(1))
	err = gs.ValidatePlay(gs.Players[0].ID, someCard)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "eliminated")
}

func TestSkipAdvancesTwoSeats(t *testing.T) {
	gs := newTestGame(t, 4)
	card := give(gs.Players[0], wild(models.WildSkip))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectPlayerSkipped, EffectTurnChanged}, effectTypes(effects))
	assert.Equal(t, gs.Players[1].ID, effects[1].(PlayerSkipped).PlayerID)
	assert.Equal(t, gs.Players[2].ID, effects[2].(TurnChanged).PlayerID)
	assert.Equal(t, 2, gs.CurrentPlayerIndex)
}

func TestPassMeByAdvancesTwoSeats(t *testing.T) {
	gs := newTestGame(t, 4)
	card := give(gs.Players[0], wild(models.WildPassMeBy))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectPlayerPassed, EffectTurnChanged}, effectTypes(effects))
	assert.Equal(t, gs.Players[1].ID, effects[1].(PlayerPassed).PlayerID)
	assert.Equal(t, 2, gs.CurrentPlayerIndex)
}

func TestReverseFlipsDirection(t *testing.T) {
	gs := newTestGame(t, 4)
	card := give(gs.Players[0], wild(models.WildReverse))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectDirectionReversed, EffectTurnChanged}, effectTypes(effects))
	assert.Equal(t, Counterclockwise, gs.Direction)
	// Counterclockwise from seat 0 lands on the last seat.
	assert.Equal(t, 3, gs.CurrentPlayerIndex)
}

func TestDrawTwoForcesCardsOnOthers(t *testing.T) {
	gs := newTestGame(t, 3)
	card := give(gs.Players[0], wild(models.WildDrawTwo))
	deckBefore := len(gs.Deck)
	handB := len(gs.Players[1].Hand)
	handC := len(gs.Players[2].Hand)

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	assert.Equal(t, handB+2, len(gs.Players[1].Hand))
	assert.Equal(t, handC+2, len(gs.Players[2].Hand))
	assert.Equal(t, deckBefore-4, len(gs.Deck))

	var draws []DrawCards
	for _, e := range effects {
		if d, ok := e.(DrawCards); ok {
			draws = append(draws, d)
		}
	}
	require.Len(t, draws, 2)
	assert.Equal(t, gs.Players[1].ID, draws[0].PlayerID)
	assert.Equal(t, 2, draws[0].Count)
	assert.Equal(t, gs.Players[2].ID, draws[1].PlayerID)
}

func TestBombDefendedWithZero(t *testing.T) {
	gs := newTestGame(t, 2)
	defender := gs.Players[1]
	defender.Hand = []models.Card{number(3), number(0), number(0)}
	card := give(gs.Players[0], wild(models.WildBomb))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectBombDefended, EffectTurnChanged}, effectTypes(effects))
	defended := effects[1].(BombDefended)
	assert.Equal(t, defender.ID, defended.PlayerID)
	assert.Equal(t, 0, defended.Discarded.Value)

	// Only the first zero is spent and it lands on the discard pile.
	assert.Len(t, defender.Hand, 2)
	assert.Equal(t, models.InitialLives, defender.LivesRemaining)
	assert.Contains(t, cardIDs(gs.DiscardPile), defended.Discarded.ID)
	assert.Equal(t, 0, gs.RunningTotal, "bomb resets the total")
}

func TestBombWithoutZeroFlipsLife(t *testing.T) {
	gs := newTestGame(t, 2)
	victim := gs.Players[1]
	victim.Hand = []models.Card{number(3), number(5)}
	card := give(gs.Players[0], wild(models.WildBomb))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectCardPlayed, EffectLifeFlipped, EffectTurnChanged}, effectTypes(effects))
	assert.Equal(t, models.InitialLives-1, victim.LivesRemaining)
	assert.Equal(t, []bool{false, true, true, true, true}, victim.AliveMarkers)
}

func TestEqualsWildsPinTotal(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.RunningTotal = 18
	ten := give(gs.Players[0], wild(models.WildEqualsTen))

	_, err := gs.ApplyPlay(gs.Players[0].ID, ten.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, gs.RunningTotal)

	gs.CurrentPlayerIndex = 0
	zero := give(gs.Players[0], wild(models.WildEqualsZero))
	_, err = gs.ApplyPlay(gs.Players[0].ID, zero.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gs.RunningTotal)
}

func TestHandInRedealResetsTotalAndHands(t *testing.T) {
	gs := newTestGame(t, 3)
	gs.RunningTotal = 19
	card := give(gs.Players[0], wild(models.WildHandInRedeal))

	effects, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)

	assert.Contains(t, effectTypes(effects), EffectHandInRedeal)
	assert.Equal(t, 0, gs.RunningTotal)
	for _, p := range gs.Players {
		assert.Len(t, p.Hand, models.InitialHandSize)
	}
	assert.Empty(t, gs.DiscardPile)
	// The redeal pools the extra synthetic card too; conservation holds at
	// the new count.
	assert.Equal(t, models.DeckSize+1, gs.CardTotal())
}

func TestLastCardFlipsOthersAndHoldsTurn(t *testing.T) {
	gs := newTestGame(t, 3)
	actor := gs.Players[0]
	actor.Hand = nil
	card := give(actor, number(4))

	effects, err := gs.ApplyPlay(actor.ID, card.ID)
	require.NoError(t, err)

	require.Equal(t,
		[]EffectType{EffectCardPlayed, EffectLifeFlipped, EffectLifeFlipped, EffectReshuffleNeeded},
		effectTypes(effects))
	assert.Equal(t, models.InitialLives-1, gs.Players[1].LivesRemaining)
	assert.Equal(t, models.InitialLives-1, gs.Players[2].LivesRemaining)
	assert.Equal(t, models.InitialLives, actor.LivesRemaining)
	// The turn stays with the player who went out.
	assert.Equal(t, 0, gs.CurrentPlayerIndex)
	assert.Equal(t, actor.ID, effects[3].(ReshuffleNeeded).PlayerID)
}

func TestCannotPlayFlipsLifeAndResetsTotal(t *testing.T) {
	gs := newTestGame(t, 3)
	gs.RunningTotal = 17
	actor := gs.Players[0]
	actor.Hand = []models.Card{number(7), number(5)}

	effects, err := gs.HandleCannotPlay(actor.ID)
	require.NoError(t, err)

	require.Equal(t, []EffectType{EffectLifeFlipped, EffectTurnChanged}, effectTypes(effects))
	flip := effects[0].(LifeFlipped)
	assert.Equal(t, actor.ID, flip.PlayerID)
	assert.Equal(t, "cannot-play", flip.Reason)
	assert.Equal(t, 0, gs.RunningTotal)
	assert.Equal(t, 1, gs.CurrentPlayerIndex)
}

func TestCannotPlayRejectedWhenHandPlayable(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.RunningTotal = 17
	actor := gs.Players[0]
	actor.Hand = []models.Card{number(7), number(4)}
	livesBefore := actor.LivesRemaining

	_, err := gs.HandleCannotPlay(actor.ID)
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "playable")
	assert.Equal(t, livesBefore, actor.LivesRemaining)
	assert.Equal(t, 17, gs.RunningTotal)
}

func TestCannotPlayOutOfTurnRejected(t *testing.T) {
	gs := newTestGame(t, 2)
	_, err := gs.HandleCannotPlay(gs.Players[1].ID)
	require.Error(t, err)
	assert.True(t, IsRejection(err))
}

func TestEliminationAndWin(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.RunningTotal = 17
	loser := gs.Players[0]
	loser.LivesRemaining = 1
	loser.AliveMarkers = []bool{false, false, false, false, true}
	loser.Hand = []models.Card{number(7)}

	effects, err := gs.HandleCannotPlay(loser.ID)
	require.NoError(t, err)

	types := effectTypes(effects)
	assert.Contains(t, types, EffectLifeFlipped)
	assert.Contains(t, types, EffectPlayerEliminated)
	assert.Contains(t, types, EffectGameOver)

	assert.True(t, loser.IsEliminated)
	assert.Equal(t, 0, loser.LivesRemaining)
	assert.Equal(t, PhaseFinished, gs.Phase)
	require.NotNil(t, gs.Winner)
	assert.Equal(t, gs.Players[1].ID, gs.Winner.ID)
	assert.False(t, gs.FinishedAt.IsZero())
}

func TestEliminatedPlayersSkippedInRotation(t *testing.T) {
	gs := newTestGame(t, 4)
	gs.Players[1].IsEliminated = true
	gs.Players[2].IsEliminated = true

	assert.Equal(t, 3, gs.nextIndex(0))
	assert.Equal(t, 0, gs.nextIndex(3))

	gs.Direction = Counterclockwise
	assert.Equal(t, 3, gs.nextIndex(0))
}

func TestDrawTwoSkipsEliminatedPlayers(t *testing.T) {
	gs := newTestGame(t, 3)
	gs.Players[1].IsEliminated = true
	handBefore := len(gs.Players[1].Hand)
	card := give(gs.Players[0], wild(models.WildDrawTwo))

	_, err := gs.ApplyPlay(gs.Players[0].ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, handBefore, len(gs.Players[1].Hand))
	assert.Equal(t, models.InitialHandSize+2, len(gs.Players[2].Hand))
}

func TestCardConservationThroughRealPlay(t *testing.T) {
	gs := newTestGame(t, 4)
	require.Equal(t, models.DeckSize, gs.CardTotal())

	// Total starts at 0, so any card in the opening hand is legal.
	for turn := 0; turn < 8; turn++ {
		actor := gs.CurrentPlayer()
		var playable *models.Card
		for i := range actor.Hand {
			if err := gs.ValidatePlay(actor.ID, actor.Hand[i]); err == nil {
				playable = &actor.Hand[i]
				break
			}
		}
		if playable == nil {
			_, err := gs.HandleCannotPlay(actor.ID)
			require.NoError(t, err)
		} else {
			_, err := gs.ApplyPlay(actor.ID, playable.ID)
			require.NoError(t, err)
		}
		assert.Equal(t, models.DeckSize, gs.CardTotal(), "turn %d broke conservation", turn)
		if gs.Phase != PhasePlaying {
			break
		}
	}
}

func TestApplyPlayStructuralErrors(t *testing.T) {
	gs := newTestGame(t, 2)

	_, err := gs.ApplyPlay(uuid.New(), uuid.New())
	require.Error(t, err)
	assert.False(t, IsRejection(err))

	_, err = gs.ApplyPlay(gs.Players[0].ID, uuid.New())
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestRedealPoolsEverything(t *testing.T) {
	gs := newTestGame(t, 3)
	gs.RunningTotal = 12
	gs.DiscardPile = append(gs.DiscardPile, gs.Players[0].Hand[0])
	gs.Players[0].Hand = gs.Players[0].Hand[1:]

	gs.Redeal()

	for _, p := range gs.Players {
		assert.Len(t, p.Hand, models.InitialHandSize)
	}
	assert.Empty(t, gs.DiscardPile)
	assert.Equal(t, models.DeckSize, gs.CardTotal())
	// Only the hand-in-redeal wild resets the total, not the redeal itself.
	assert.Equal(t, 12, gs.RunningTotal)
}

func cardIDs(cards []models.Card) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
