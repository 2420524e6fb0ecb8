// internal/room/room.go

// Package room implements the in-memory room registry: creation with
// collision-checked join codes, join/leave with host reassignment, and
// lookup. The Store is created once at process start and injected into the
// session coordinator; nothing here survives a restart by design.
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fivealive/server/internal/game"
	"github.com/fivealive/server/internal/models"
)

// Room is the matchmaking container. Before a game starts it owns the roster;
// once started, the authoritative player list belongs to the GameState and
// the room only reads through it.
type Room struct {
	ID         string
	HostID     uuid.UUID
	MaxPlayers int
	CreatedAt  time.Time

	// Mu is the single guard for all per-room state: the roster, Game, and
	// the fields of seated players. Every intent that touches this room runs
	// under it, so intents against the same room apply atomically and in
	// arrival order. Rooms never share mutable state with each other.
	Mu sync.Mutex

	roster       []*models.Player
	passwordHash []byte

	Game *game.GameState
}

// Players returns the authoritative player list: the GameState's once a game
// has started, the pre-game roster before that.
func (r *Room) Players() []*models.Player {
	if r.Game != nil {
		return r.Game.Players
	}
	return r.roster
}

// PlayerByID looks a participant up by identity, or nil.
func (r *Room) PlayerByID(id uuid.UUID) *models.Player {
	for _, p := range r.Players() {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// HasPassword reports whether the room requires a password to join.
func (r *Room) HasPassword() bool { return len(r.passwordHash) > 0 }

// Phase reports the room's game phase, or waiting when no game exists yet.
func (r *Room) Phase() game.Phase {
	if r.Game == nil {
		return game.PhaseWaiting
	}
	return r.Game.Phase
}

// StartGame hands roster ownership to a fresh GameState. Caller has verified
// the start preconditions and holds the room lock.
func (r *Room) StartGame(gs *game.GameState) {
	r.Game = gs
	r.roster = nil
}

func (r *Room) checkPassword(password string) bool {
	if len(r.passwordHash) == 0 {
		return true
	}
	return bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) == nil
}

// connectedCount counts participants still attached to a live connection.
func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.Players() {
		if p.IsConnected {
			n++
		}
	}
	return n
}
