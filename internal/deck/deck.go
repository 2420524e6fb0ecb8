// internal/deck/deck.go

// Package deck implements the pure 5 Alive deck engine: deck construction,
// shuffling, dealing, drawing, redeals, and the playability rules shared by
// the rule engine and the session coordinator.
package deck

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/fivealive/server/internal/models"
)

// numberCounts fixes the multiplicity of each number card face value.
// 8+8+8+8+5+4+2+1 = 44 number cards.
type numberCount struct {
	value int
	count int
}

var numberCounts = []numberCount{
	{value: 7, count: 1},
	{value: 6, count: 2},
	{value: 5, count: 4},
	{value: 4, count: 5},
	{value: 3, count: 8},
	{value: 2, count: 8},
	{value: 1, count: 8},
	{value: 0, count: 8},
}

// wildTypes lists the ten wild cards, one of each type, completing the
// 54-card deck.
var wildTypes = []models.WildType{
	models.WildBomb,
	models.WildHandInRedeal,
	models.WildEqualsZero,
	models.WildEqualsTen,
	models.WildDrawOne,
	models.WildDrawTwo,
	models.WildReverse,
	models.WildSkip,
	models.WildEquals21,
	models.WildPassMeBy,
}

// New builds the full 54-card deck in deterministic order with fresh card
// identities. Callers shuffle separately.
func New() []models.Card {
	cards := make([]models.Card, 0, models.DeckSize)
	for _, nc := range numberCounts {
		for i := 0; i < nc.count; i++ {
			cards = append(cards, models.Card{
				ID:           uuid.New(),
				Kind:         models.CardNumber,
				Value:        nc.value,
				DisplayLabel: fmt.Sprintf("%d", nc.value),
			})
		}
	}
	for _, wt := range wildTypes {
		cards = append(cards, models.Card{
			ID:           uuid.New(),
			Kind:         models.CardWild,
			Value:        wildValue(wt),
			WildType:     wt,
			DisplayLabel: wildLabel(wt),
		})
	}
	return cards
}

// Shuffle permutes the deck in place using Fisher-Yates via the provided
// source, so a seeded source yields a reproducible order.
func Shuffle(cards []models.Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal distributes perPlayer rounds of one card each, round-robin, drawing
// from the end of the deck. If the deck underflows, later players simply
// receive fewer cards; Deal never fails.
func Deal(cards []models.Card, playerCount, perPlayer int) (hands [][]models.Card, remaining []models.Card) {
	hands = make([][]models.Card, playerCount)
	for i := range hands {
		hands[i] = []models.Card{}
	}
	remaining = cards
	for round := 0; round < perPlayer; round++ {
		for p := 0; p < playerCount; p++ {
			if len(remaining) == 0 {
				return hands, remaining
			}
			hands[p] = append(hands[p], remaining[len(remaining)-1])
			remaining = remaining[:len(remaining)-1]
		}
	}
	return hands, remaining
}

// Draw pops up to n cards from the end of the deck, returning fewer if the
// deck is short. Never errors.
func Draw(cards []models.Card, n int) (drawn, remaining []models.Card) {
	if n > len(cards) {
		n = len(cards)
	}
	cut := len(cards) - n
	drawn = make([]models.Card, n)
	for i := 0; i < n; i++ {
		drawn[i] = cards[len(cards)-1-i]
	}
	return drawn, cards[:cut]
}

// RedealAll pools every card in play (all hands, the discard pile, and the
// remaining deck), reshuffles, and deals perPlayer cards back to each hand in
// the same player order. The discard pile comes back empty; the total card
// count is conserved.
func RedealAll(hands [][]models.Card, discard, cards []models.Card, perPlayer int, rng *rand.Rand) (newHands [][]models.Card, newDeck []models.Card) {
	pool := make([]models.Card, 0, len(discard)+len(cards))
	for _, h := range hands {
		pool = append(pool, h...)
	}
	pool = append(pool, discard...)
	pool = append(pool, cards...)
	Shuffle(pool, rng)
	return Deal(pool, len(hands), perPlayer)
}

// CanPlay reports whether a card is legal at the given running total. Wild
// cards are always playable; a number card must not push the total past 21.
func CanPlay(c models.Card, total int) bool {
	if c.IsWild() {
		return true
	}
	return total+c.Value <= models.MaxTotal
}

// HasPlayable reports whether any card in the hand is legal at the total.
func HasPlayable(hand []models.Card, total int) bool {
	for _, c := range hand {
		if CanPlay(c, total) {
			return true
		}
	}
	return false
}

// NewTotal computes the running total after playing a card. Number cards add
// their face value; the equals wilds (and bomb / hand-in-redeal) pin the
// total; every other wild leaves it unchanged.
func NewTotal(c models.Card, total int) int {
	if c.IsNumber() {
		return total + c.Value
	}
	switch c.WildType {
	case models.WildEqualsZero, models.WildBomb, models.WildHandInRedeal:
		return 0
	case models.WildEqualsTen:
		return 10
	case models.WildEquals21:
		return models.MaxTotal
	default:
		return total
	}
}

// FirstZero returns the index of the first 0-value number card in the hand,
// used for bomb defense.
func FirstZero(hand []models.Card) (int, bool) {
	for i, c := range hand {
		if c.IsNumber() && c.Value == 0 {
			return i, true
		}
	}
	return 0, false
}

func wildValue(t models.WildType) int {
	switch t {
	case models.WildEqualsTen:
		return 10
	case models.WildEquals21:
		return models.MaxTotal
	default:
		return 0
	}
}

func wildLabel(t models.WildType) string {
	switch t {
	case models.WildBomb:
		return "BOMB"
	case models.WildHandInRedeal:
		return "Re-Deal"
	case models.WildEqualsZero:
		return "=0"
	case models.WildEqualsTen:
		return "=10"
	case models.WildEquals21:
		return "=21"
	case models.WildDrawOne:
		return "+1"
	case models.WildDrawTwo:
		return "+2"
	case models.WildReverse:
		return "Reverse"
	case models.WildSkip:
		return "Skip"
	case models.WildPassMeBy:
		return "Pass"
	default:
		return string(t)
	}
}
