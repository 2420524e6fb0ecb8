// internal/room/store.go
package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fivealive/server/internal/game"
	"github.com/fivealive/server/internal/models"
)

// User-rule rejections surfaced to the originating connection only.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrRoomFull        = errors.New("room is full")
	ErrGameInProgress  = errors.New("game already in progress")
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Store is the process-wide room directory. The store mutex guards only the
// code-to-room map; all room state (roster, Game, player fields) is guarded
// by the room's own mutex, which the store acquires after its map lock.
// Lock order is always store then room, never the reverse.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
	log   *logrus.Logger
}

// NewStore builds an empty registry.
func NewStore(log *logrus.Logger) *Store {
	return &Store{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log,
	}
}

// Summary is the lobby-listing view of a room.
type Summary struct {
	ID          string     `json:"id"`
	HostName    string     `json:"hostName"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	HasPassword bool       `json:"hasPassword"`
	Phase       game.Phase `json:"phase"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Create registers a new room hosted by the given player. Room codes are
// short human-shareable strings, regenerated until unique among live rooms.
// A non-empty password is stored as a bcrypt hash.
func (s *Store) Create(host *models.Player, maxPlayers int, password string) (*Room, error) {
	if maxPlayers < models.MinPlayers || maxPlayers > models.MaxPlayers {
		maxPlayers = models.MaxPlayers
	}

	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Room{
		ID:           s.generateCode(),
		HostID:       host.ID,
		MaxPlayers:   maxPlayers,
		CreatedAt:    time.Now(),
		roster:       []*models.Player{host},
		passwordHash: hash,
	}
	host.IsHost = true
	s.rooms[r.ID] = r

	s.log.WithFields(logrus.Fields{"room": r.ID, "host": host.Username}).Info("room created")
	return r, nil
}

// Join adds a player to a room. Fails when the room is missing, the password
// does not match, the room is full, or a game is already in progress.
func (s *Store) Join(roomID string, player *models.Player, password string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.checkPassword(password) {
		return nil, ErrInvalidPassword
	}
	if len(r.Players()) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.Phase() == game.PhasePlaying {
		return nil, ErrGameInProgress
	}

	r.roster = append(r.roster, player)
	s.log.WithFields(logrus.Fields{"room": r.ID, "player": player.Username}).Info("player joined room")
	return r, nil
}

// Leave removes a player from a room. An empty room is deleted outright; a
// departing host promotes the first remaining player. Mid-game the seat is
// kept for turn-order integrity and the player is only marked disconnected;
// the room dies once no one is left connected. Leave is idempotent: leaving
// a room you are not in is a no-op.
func (s *Store) Leave(roomID string, playerID uuid.UUID) (remaining *Room, newHost *models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Game == nil {
		kept := r.roster[:0]
		for _, p := range r.roster {
			if p.ID != playerID {
				kept = append(kept, p)
			}
		}
		r.roster = kept
		if len(r.roster) == 0 {
			delete(s.rooms, roomID)
			s.log.WithField("room", roomID).Info("room deleted (empty)")
			return nil, nil
		}
	} else {
		p := r.PlayerByID(playerID)
		if p != nil {
			p.IsConnected = false
			p.Conn = nil
		}
		if r.connectedCount() == 0 {
			delete(s.rooms, roomID)
			s.log.WithField("room", roomID).Info("room deleted (no connected players)")
			return nil, nil
		}
	}

	if r.HostID == playerID {
		for _, p := range r.Players() {
			if p.ID != playerID && (r.Game == nil || p.IsConnected) {
				newHost = p
				break
			}
		}
		if newHost != nil {
			r.HostID = newHost.ID
			newHost.IsHost = true
			s.log.WithFields(logrus.Fields{"room": r.ID, "host": newHost.Username}).Info("host reassigned")
		}
	}
	return r, newHost
}

// Get looks a room up by code, or nil.
func (s *Store) Get(roomID string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[roomID]
}

// FindContaining returns every room the player belongs to. Used for abrupt
// disconnect cleanup; a connection belongs to at most one room in normal
// operation but the registry does not assume it.
func (s *Store) FindContaining(playerID uuid.UUID) []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []*Room
	for _, r := range s.rooms {
		r.Mu.Lock()
		member := r.PlayerByID(playerID) != nil
		r.Mu.Unlock()
		if member {
			found = append(found, r)
		}
	}
	return found
}

// List returns lobby summaries for every live room.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.rooms))
	for _, r := range s.rooms {
		r.Mu.Lock()
		hostName := "Unknown"
		if host := r.PlayerByID(r.HostID); host != nil {
			hostName = host.Username
		}
		out = append(out, Summary{
			ID:          r.ID,
			HostName:    hostName,
			PlayerCount: len(r.Players()),
			MaxPlayers:  r.MaxPlayers,
			HasPassword: r.HasPassword(),
			Phase:       r.Phase(),
			CreatedAt:   r.CreatedAt,
		})
		r.Mu.Unlock()
	}
	return out
}

// generateCode produces a unique room code. Caller holds the store lock.
func (s *Store) generateCode() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}
