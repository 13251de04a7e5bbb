// Package server is the thin web front end: it serializes boards
// to/from their 9-character wire form and drives the engine one move
// per request. Everything game-related happens in the engine.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"playout/engine"
	"playout/game"
	"playout/tictactoe"
)

type Server struct {
	engine   *engine.Engine[tictactoe.Board]
	upgrader websocket.Upgrader
}

func New(e *engine.Engine[tictactoe.Board]) *Server {
	return &Server{
		engine: e,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the front end's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /move", s.handleMove)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /live", s.handleLive)
	return mux
}

type moveRequest struct {
	Board string `json:"board"`
}

// moveResponse reports either the engine's reply board (status
// "continue") or how the game ended, from the engine's perspective
// ("won", "tied", "lost").
type moveResponse struct {
	Status string `json:"status"`
	Board  string `json:"board,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	board, err := tictactoe.Parse(req.Board)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	next, err := s.engine.Move(r.Context(), board)
	if err != nil {
		if outcome, ok := game.AsOutcome(err); ok {
			log.Info().Str("board", req.Board).Stringer("outcome", outcome).Msg("game over")
			writeJSON(w, moveResponse{Status: outcome.String()})
			return
		}
		log.Error().Err(err).Str("board", req.Board).Msg("move failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Info().Str("board", req.Board).Str("reply", next.String()).Msg("engine moved")
	writeJSON(w, moveResponse{Status: "continue", Board: next.String()})
}

type statsResponse struct {
	States int `json:"states"`
	engine.Metrics
}

func (s *Server) stats() statsResponse {
	return statsResponse{
		States:  s.engine.Table().Len(),
		Metrics: s.engine.Metrics(),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats())
}

// handleLive streams the training counters over a websocket twice a
// second until the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteJSON(s.stats()); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}
