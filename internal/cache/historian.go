// internal/cache/historian.go

// Package cache publishes an ordered, best-effort history of applied intents
// to Redis for later audit and replay tooling. Losing Redis never affects
// gameplay; rooms remain memory-only.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when Redis is not configured or
// unreachable; publishers must tolerate that.
var Rdb *redis.Client

// Init connects the shared client. A failed ping leaves Rdb nil and returns
// the error so the caller can log and carry on.
func Init(addr string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	return nil
}

// GameActionRecord is one applied intent in a room's history stream.
type GameActionRecord struct {
	RoomID      string                 `json:"roomId"`
	ActionIndex int                    `json:"actionIndex"`
	ActorID     uuid.UUID              `json:"actorId"`
	ActionType  string                 `json:"actionType"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// PublishGameAction appends the record to the room's history list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := "fivealive:history:" + rec.RoomID
	if err := Rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}
