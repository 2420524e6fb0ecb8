// internal/session/coordinator.go

// Package session owns the connection-facing side of the server: decoding
// client intents, serializing them against the room registry and rule engine,
// and fanning out per-recipient events. One goroutine per connection reads
// intents; all room mutation happens under the owning room's lock, so intents
// against the same room apply atomically and in arrival order.
package session

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fivealive/server/internal/cache"
	"github.com/fivealive/server/internal/game"
	"github.com/fivealive/server/internal/models"
	"github.com/fivealive/server/internal/room"
)

// EmitFn delivers one event to one player. Invoked with the owning room's
// lock held, so implementations must not call back into the coordinator.
// Injected so tests can capture outbound traffic without sockets.
type EmitFn func(p *models.Player, ev Event)

// Client is the per-connection session state. It is owned by the connection's
// read goroutine; the coordinator only reads it inside handler calls made
// from that goroutine.
type Client struct {
	ID       uuid.UUID
	Username string
	RoomID   string
	Conn     *websocket.Conn
}

// Coordinator routes client intents into the room registry and rule engine
// and broadcasts the results.
type Coordinator struct {
	store *room.Store
	log   *logrus.Logger

	// Emit delivers events. Defaults to a wsjson write with a short deadline;
	// tests replace it with a recorder.
	Emit EmitFn

	seqMu     sync.Mutex
	actionSeq map[string]int
}

// NewCoordinator wires a coordinator over the given registry.
func NewCoordinator(store *room.Store, log *logrus.Logger) *Coordinator {
	c := &Coordinator{
		store:     store,
		log:       log,
		actionSeq: make(map[string]int),
	}
	c.Emit = c.emitWS
	return c
}

// emitWS writes the event to the player's socket. A failed write is logged
// and otherwise ignored; the read loop notices the dead connection.
func (co *Coordinator) emitWS(p *models.Player, ev Event) {
	if p.Conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, p.Conn, ev); err != nil {
		co.log.WithFields(logrus.Fields{"player": p.Username, "event": ev.Type}).
			WithError(err).Warn("event write failed")
	}
}

// emitClient delivers an event to the connection behind a client, whether or
// not that client currently owns a room seat.
func (co *Coordinator) emitClient(c *Client, ev Event) {
	co.Emit(&models.Player{ID: c.ID, Username: c.Username, Conn: c.Conn, IsConnected: true}, ev)
}

// Dispatch decodes and executes one inbound intent.
func (co *Coordinator) Dispatch(ctx context.Context, c *Client, env Envelope) {
	switch env.Type {
	case IntentCreateRoom:
		var p CreateRoomPayload
		if !co.decode(c, env.Data, &p) {
			return
		}
		co.CreateRoom(ctx, c, p)
	case IntentJoinRoom:
		var p JoinRoomPayload
		if !co.decode(c, env.Data, &p) {
			return
		}
		co.JoinRoom(ctx, c, p)
	case IntentLeaveRoom:
		co.LeaveRoom(ctx, c)
	case IntentGetRooms:
		co.ListRooms(ctx, c)
	case IntentStartGame:
		co.StartGame(ctx, c)
	case IntentPlayCard:
		var p PlayCardPayload
		if !co.decode(c, env.Data, &p) {
			return
		}
		co.PlayCard(ctx, c, p)
	case IntentCannotPlay:
		co.CannotPlay(ctx, c)
	case IntentSendMessage:
		var p SendMessagePayload
		if !co.decode(c, env.Data, &p) {
			return
		}
		co.SendMessage(ctx, c, p)
	case IntentToggleMic:
		var p ToggleMicPayload
		if !co.decode(c, env.Data, &p) {
			return
		}
		co.ToggleMic(ctx, c, p)
	default:
		co.emitClient(c, errorEvent(CodeBadRequest, "unknown intent type: "+env.Type))
	}
}

func (co *Coordinator) decode(c *Client, data json.RawMessage, into interface{}) bool {
	if err := json.Unmarshal(data, into); err != nil {
		co.emitClient(c, errorEvent(CodeBadRequest, "malformed payload: "+err.Error()))
		return false
	}
	return true
}

// CreateRoom registers a new room with the client as host.
func (co *Coordinator) CreateRoom(ctx context.Context, c *Client, p CreateRoomPayload) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		co.emitClient(c, errorEvent(CodeCreateRoomFailed, "username is required"))
		return
	}
	if c.RoomID != "" {
		co.emitClient(c, errorEvent(CodeCreateRoomFailed, "already in a room"))
		return
	}

	host := models.NewPlayer(c.ID, username, true, c.Conn)
	r, err := co.store.Create(host, p.MaxPlayers, p.Password)
	if err != nil {
		co.emitClient(c, errorEvent(CodeCreateRoomFailed, err.Error()))
		return
	}
	c.Username = username
	c.RoomID = r.ID

	r.Mu.Lock()
	co.Emit(host, Event{Type: EventRoomCreated, Data: sanitizeRoom(r, host.ID)})
	r.Mu.Unlock()
	co.logAction(r.ID, c.ID, IntentCreateRoom, map[string]interface{}{"username": username})
}

// JoinRoom seats the client in an existing room and announces the arrival.
func (co *Coordinator) JoinRoom(ctx context.Context, c *Client, p JoinRoomPayload) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		co.emitClient(c, errorEvent(CodeJoinRoomFailed, "username is required"))
		return
	}
	if c.RoomID != "" {
		co.emitClient(c, errorEvent(CodeJoinRoomFailed, "already in a room"))
		return
	}

	player := models.NewPlayer(c.ID, username, false, c.Conn)
	r, err := co.store.Join(strings.ToUpper(strings.TrimSpace(p.RoomID)), player, p.Password)
	if err != nil {
		co.emitClient(c, errorEvent(CodeJoinRoomFailed, err.Error()))
		return
	}
	c.Username = username
	c.RoomID = r.ID

	r.Mu.Lock()
	co.Emit(player, Event{Type: EventRoomJoined, Data: sanitizeRoom(r, player.ID)})
	for _, other := range r.Players() {
		if other.ID == player.ID {
			continue
		}
		co.Emit(other, Event{Type: EventPlayerJoined, Data: sanitizePlayer(player, other.ID)})
	}
	r.Mu.Unlock()
	co.logAction(r.ID, c.ID, IntentJoinRoom, map[string]interface{}{"username": username})
}

// LeaveRoom removes the client from its room and announces the departure.
func (co *Coordinator) LeaveRoom(ctx context.Context, c *Client) {
	if c.RoomID == "" {
		co.emitClient(c, errorEvent(CodeLeaveRoomFailed, "not in a room"))
		return
	}
	roomID := c.RoomID
	c.RoomID = ""
	co.announceLeave(roomID, c.ID, c.Username)
	co.logAction(roomID, c.ID, IntentLeaveRoom, nil)
}

// announceLeave performs the registry-side leave and tells the survivors.
func (co *Coordinator) announceLeave(roomID string, playerID uuid.UUID, username string) {
	r, newHost := co.store.Leave(roomID, playerID)
	if r == nil {
		return
	}
	left := Event{Type: EventPlayerLeft, Data: map[string]interface{}{
		"playerId": playerID,
		"username": username,
	}}
	var hostChanged *Event
	if newHost != nil {
		hostChanged = &Event{Type: EventHostChanged, Data: map[string]interface{}{
			"playerId": newHost.ID,
			"username": newHost.Username,
		}}
	}
	r.Mu.Lock()
	for _, p := range r.Players() {
		if p.ID == playerID || !p.IsConnected {
			continue
		}
		co.Emit(p, left)
		if hostChanged != nil {
			co.Emit(p, *hostChanged)
		}
	}
	r.Mu.Unlock()
}

// ListRooms replies with the lobby listing.
func (co *Coordinator) ListRooms(ctx context.Context, c *Client) {
	co.emitClient(c, Event{Type: EventRoomsList, Data: map[string]interface{}{
		"rooms": co.store.List(),
	}})
}

// StartGame deals a fresh game. Host-only, and only from the waiting phase
// with enough players seated.
func (co *Coordinator) StartGame(ctx context.Context, c *Client) {
	r := co.store.Get(c.RoomID)
	if r == nil {
		co.emitClient(c, errorEvent(CodeStartGameFailed, "not in a room"))
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.HostID != c.ID {
		co.emitClient(c, errorEvent(CodeStartGameFailed, "only the host can start the game"))
		return
	}
	if r.Phase() != game.PhaseWaiting {
		co.emitClient(c, errorEvent(CodeStartGameFailed, "game already started"))
		return
	}
	players := r.Players()
	if len(players) < models.MinPlayers {
		co.emitClient(c, errorEvent(CodeStartGameFailed, "not enough players"))
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gs := game.NewGame(r.ID, players, rng)
	r.StartGame(gs)

	for _, rv := range co.recipientViews(gs) {
		co.Emit(rv.player, Event{Type: EventGameStarted, Data: rv.view})
	}
	co.log.WithFields(logrus.Fields{"room": r.ID, "players": len(players)}).Info("game started")
	co.logAction(r.ID, c.ID, IntentStartGame, map[string]interface{}{"players": len(players)})
}

// PlayCard validates and applies a card play, then broadcasts the ordered
// effect log followed by per-recipient state snapshots.
func (co *Coordinator) PlayCard(ctx context.Context, c *Client, p PlayCardPayload) {
	r := co.store.Get(c.RoomID)
	if r == nil {
		co.emitClient(c, errorEvent(CodePlayCardFailed, "no game in progress"))
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	gs := r.Game
	if gs == nil {
		co.emitClient(c, errorEvent(CodePlayCardFailed, "no game in progress"))
		return
	}

	var card *models.Card
	if me := gs.PlayerByID(c.ID); me != nil {
		for i := range me.Hand {
			if me.Hand[i].ID == p.CardID {
				card = &me.Hand[i]
				break
			}
		}
	}
	if card == nil {
		co.emitClient(c, errorEvent(CodeInvalidPlay, "card not in hand"))
		return
	}
	played := *card

	if err := gs.ValidatePlay(c.ID, played); err != nil {
		co.emitClient(c, errorEvent(CodeInvalidPlay, err.Error()))
		return
	}

	effects, err := gs.ApplyPlay(c.ID, p.CardID)
	if err != nil {
		co.log.WithFields(logrus.Fields{"room": r.ID, "player": c.Username}).
			WithError(err).Error("play application failed")
		co.emitClient(c, errorEvent(CodePlayCardFailed, "internal error applying play"))
		return
	}

	// A player going out triggers a full redeal before anyone moves again.
	for _, e := range effects {
		if e.EffectType() == game.EffectReshuffleNeeded {
			gs.Redeal()
			break
		}
	}

	views := co.recipientViews(gs)
	co.broadcastEffects(views, effects)
	for _, rv := range views {
		co.Emit(rv.player, Event{Type: EventGameStateUpdate, Data: rv.view})
	}
	co.logAction(r.ID, c.ID, IntentPlayCard, map[string]interface{}{
		"cardId": p.CardID.String(),
		"label":  played.DisplayLabel,
	})
}

// CannotPlay resolves a cannot-play claim for the current player.
func (co *Coordinator) CannotPlay(ctx context.Context, c *Client) {
	r := co.store.Get(c.RoomID)
	if r == nil {
		co.emitClient(c, errorEvent(CodeCannotPlayFailed, "no game in progress"))
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	gs := r.Game
	if gs == nil {
		co.emitClient(c, errorEvent(CodeCannotPlayFailed, "no game in progress"))
		return
	}

	effects, err := gs.HandleCannotPlay(c.ID)
	if err != nil {
		if game.IsRejection(err) {
			co.emitClient(c, errorEvent(CodeInvalidPlay, err.Error()))
		} else {
			co.emitClient(c, errorEvent(CodeCannotPlayFailed, "internal error"))
		}
		return
	}

	views := co.recipientViews(gs)
	co.broadcastEffects(views, effects)
	for _, rv := range views {
		co.Emit(rv.player, Event{Type: EventGameStateUpdate, Data: rv.view})
	}
	co.logAction(r.ID, c.ID, IntentCannotPlay, nil)
}

// SendMessage relays a chat line to everyone in the room, sender included.
func (co *Coordinator) SendMessage(ctx context.Context, c *Client, p SendMessagePayload) {
	text := strings.TrimSpace(p.Message)
	if text == "" {
		return
	}
	r := co.store.Get(c.RoomID)
	if r == nil {
		co.emitClient(c, errorEvent(CodeSendMsgFailed, "not in a room"))
		return
	}
	ev := Event{Type: EventMessageReceived, Data: map[string]interface{}{
		"playerId":  c.ID,
		"username":  c.Username,
		"message":   text,
		"timestamp": time.Now().UnixMilli(),
	}}
	r.Mu.Lock()
	for _, member := range r.Players() {
		if member.IsConnected {
			co.Emit(member, ev)
		}
	}
	r.Mu.Unlock()
}

// ToggleMic sets the client's mute flag and announces the new value.
func (co *Coordinator) ToggleMic(ctx context.Context, c *Client, p ToggleMicPayload) {
	r := co.store.Get(c.RoomID)
	if r == nil {
		co.emitClient(c, errorEvent(CodeToggleMicFailed, "not in a room"))
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	me := r.PlayerByID(c.ID)
	if me == nil {
		co.emitClient(c, errorEvent(CodeToggleMicFailed, "not in this room"))
		return
	}
	me.IsMuted = p.Muted

	ev := Event{Type: EventPlayerMicChanged, Data: map[string]interface{}{
		"playerId": c.ID,
		"isMuted":  p.Muted,
	}}
	for _, member := range r.Players() {
		if member.IsConnected {
			co.Emit(member, ev)
		}
	}
}

// Disconnect cleans up after an abruptly closed connection.
func (co *Coordinator) Disconnect(c *Client) {
	for _, r := range co.store.FindContaining(c.ID) {
		co.announceLeave(r.ID, c.ID, c.Username)
	}
	c.RoomID = ""
}

// recipientView pairs a player with their sanitized snapshot.
type recipientView struct {
	player *models.Player
	view   GameView
}

// recipientViews snapshots the game once per connected player. Caller holds
// the room lock.
func (co *Coordinator) recipientViews(gs *game.GameState) []recipientView {
	views := make([]recipientView, 0, len(gs.Players))
	for _, p := range gs.Players {
		if !p.IsConnected {
			continue
		}
		views = append(views, recipientView{player: p, view: sanitizeGame(gs, p.ID)})
	}
	return views
}

// broadcastEffects sends each effect, in order, to every recipient.
func (co *Coordinator) broadcastEffects(views []recipientView, effects []game.Effect) {
	for _, e := range effects {
		ev := Event{Type: EventGameEffect, Data: encodeEffect(e)}
		for _, rv := range views {
			co.Emit(rv.player, ev)
		}
	}
}

// encodeEffect flattens an effect into a map with its type tag injected,
// matching the discriminated-union shape clients switch on.
func encodeEffect(e game.Effect) map[string]interface{} {
	out := map[string]interface{}{"type": string(e.EffectType())}
	raw, err := json.Marshal(e)
	if err != nil {
		return out
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// logAction appends the intent to the room's Redis history, off the hot path.
func (co *Coordinator) logAction(roomID string, actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	co.seqMu.Lock()
	co.actionSeq[roomID]++
	idx := co.actionSeq[roomID]
	co.seqMu.Unlock()

	rec := cache.GameActionRecord{
		RoomID:      roomID,
		ActionIndex: idx,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			co.log.WithField("room", roomID).WithError(err).Warn("action history publish failed")
		}
	}()
}
