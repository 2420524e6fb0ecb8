// internal/models/card.go
package models

import "github.com/google/uuid"

// CardKind distinguishes plain number cards from wild cards.
type CardKind string

const (
	CardNumber CardKind = "number"
	CardWild   CardKind = "wild"
	// CardHidden is the kind used for the opaque placeholder cards sent in
	// place of other players' hands. Never produced by the deck engine.
	CardHidden CardKind = "hidden"
)

// WildType identifies the special effect of a wild card.
type WildType string

const (
	WildBomb         WildType = "bomb"
	WildHandInRedeal WildType = "hand-in-redeal"
	WildEqualsZero   WildType = "equals-zero"
	WildEqualsTen    WildType = "equals-ten"
	WildEquals21     WildType = "equals-21"
	WildDrawOne      WildType = "draw-one"
	WildDrawTwo      WildType = "draw-two"
	WildReverse      WildType = "reverse"
	WildSkip         WildType = "skip"
	WildPassMeBy     WildType = "pass-me-by"
)

// Card is an immutable value created once by the deck engine. A card lives in
// exactly one container at a time: a player's hand, the discard pile, or the
// deck.
type Card struct {
	ID           uuid.UUID `json:"id"`
	Kind         CardKind  `json:"kind"`
	Value        int       `json:"value"`
	WildType     WildType  `json:"wildType,omitempty"`
	DisplayLabel string    `json:"displayLabel"`
}

// IsNumber reports whether the card is a plain number card.
func (c Card) IsNumber() bool { return c.Kind == CardNumber }

// IsWild reports whether the card carries a wild effect.
func (c Card) IsWild() bool { return c.Kind == CardWild }
