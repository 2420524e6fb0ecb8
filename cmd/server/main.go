// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fivealive/server/internal/cache"
	"github.com/fivealive/server/internal/config"
	"github.com/fivealive/server/internal/room"
	"github.com/fivealive/server/internal/server"
	"github.com/fivealive/server/internal/session"
	"github.com/fivealive/server/internal/voice"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := cache.Init(cfg.RedisAddr); err != nil {
		log.WithError(err).Warn("redis unavailable, action history disabled")
	}

	store := room.NewStore(log)
	coord := session.NewCoordinator(store, log)
	voiceSvc := voice.New(cfg.VoiceAppID, cfg.VoiceAppSecret)

	srv := server.New(coord, voiceSvc, log)
	log.WithField("addr", cfg.Addr).Info("server listening")
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
