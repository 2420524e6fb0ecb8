// internal/models/constants.go
package models

const (
	// InitialLives is the number of alive markers each player starts with.
	InitialLives = 5
	// InitialHandSize is the number of cards dealt to each player at game
	// start and after a redeal.
	InitialHandSize = 10
	// MaxTotal is the running-total ceiling a number card may not push past.
	MaxTotal = 21
	// MinPlayers / MaxPlayers bound the size of a room.
	MinPlayers = 2
	MaxPlayers = 6
	// DeckSize is the fixed size of a 5 Alive deck.
	DeckSize = 54
)
