// internal/httpserver/routes_wordle.go
//
// HTTP routes for single-player games, mounted under /api/wordle:
//   - POST   /new-game?maxRounds=N → start a session (default 6 rounds)
//   - POST   /guess                → submit a guess {gameId, guess}
//   - GET    /game/{gameId}        → current session state
//   - DELETE /game/{gameId}        → drop a session
//   - GET    /stats                → aggregate of finished games
//
// The target word is only present in responses once the game is over.

package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
)

func (s *Server) mountWordle(timeout time.Duration) {
	s.r.Route("/api/wordle", func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))
		r.Post("/new-game", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/game/{gameId}", s.handleGetGame)
		r.Delete("/game/{gameId}", s.handleDeleteGame)
		r.Get("/stats", s.handleStats)
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	maxRounds := game.DefaultMaxRounds
	if v := r.URL.Query().Get("maxRounds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, fmt.Errorf("%w: maxRounds must be a positive integer", errBadRequest))
			return
		}
		maxRounds = n
	}

	snap, err := s.eng.NewGame(r.Context(), maxRounds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Debug().Str("gameId", snap.ID).Int("maxRounds", snap.MaxRounds).Msg("game created")
	writeJSON(w, http.StatusOK, snap)
}

// guessReq is the body of POST /api/wordle/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// guessRes is the session state after a guess plus that guess's verdicts.
type guessRes struct {
	game.SessionSnapshot
	Result []game.Verdict `json:"result"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.GameID == "" {
		writeError(w, r, fmt.Errorf("%w: gameId is required", errBadRequest))
		return
	}

	verdicts, snap, err := s.eng.Guess(r.Context(), req.GameID, req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if snap.GameOver {
		s.recordGame(r.Context(), snap)
	}
	writeJSON(w, http.StatusOK, guessRes{SessionSnapshot: snap, Result: verdicts})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.eng.GetGame(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.DeleteGame(r.Context(), chi.URLParam(r, "gameId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.hist.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// recordGame writes a finished session to the ledger.
func (s *Server) recordGame(ctx context.Context, snap game.SessionSnapshot) {
	if err := s.hist.RecordGame(context.WithoutCancel(ctx), snap, s.now()); err != nil {
		log.Warn().Err(err).Str("gameId", snap.ID).Msg("record game")
		return
	}
	log.Info().Str("gameId", snap.ID).Bool("won", snap.Won).Int("rounds", snap.RoundsUsed).Msg("game finished")
}
