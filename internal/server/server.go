// internal/server/server.go

// Package server assembles the HTTP surface: the websocket endpoint, the
// voice token endpoint, and a health probe.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fivealive/server/internal/session"
	"github.com/fivealive/server/internal/voice"
)

// Server is the process's HTTP front.
type Server struct {
	coord *session.Coordinator
	voice *voice.Service
	log   *logrus.Logger
}

// New wires the server over its collaborators.
func New(coord *session.Coordinator, voiceSvc *voice.Service, log *logrus.Logger) *Server {
	return &Server{coord: coord, voice: voiceSvc, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.coord.ServeWS)
	mux.HandleFunc("/voice/token", s.handleVoiceToken)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

type voiceTokenRequest struct {
	ChannelName string `json:"channelName"`
	UID         string `json:"uid"`
}

// handleVoiceToken issues a voice channel grant. Voice auth rides on HTTP
// rather than the game socket so the media client can fetch it directly.
func (s *Server) handleVoiceToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req voiceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	grant, err := s.voice.IssueToken(req.ChannelName, req.UID)
	if err != nil {
		s.log.WithError(err).Warn("voice token issue failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
