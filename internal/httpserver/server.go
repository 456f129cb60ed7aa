// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle arena.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Single-player endpoints under /api/wordle (routes_wordle.go).
//   - Multiplayer endpoints and the room websocket under /api/multiplayer
//     (routes_multiplayer.go, socket.go).
//   - Mapping engine errors onto HTTP status codes and a JSON error body.
//
// Notes:
//   - The websocket route sits outside the Timeout middleware; every other
//     /api route is bounded by Deps.RequestTimeout.
//   - Finished games and rounds are written to the history ledger best effort.
//     A ledger failure is logged and never fails the request.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/arena-server/internal/engine"
	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/history"
	"github.com/robalobadob/wordle/apps/arena-server/internal/invite"
	"github.com/robalobadob/wordle/apps/arena-server/internal/realtime"
)

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Engine  *engine.Engine
	History *history.Store
	Invites *invite.Signer
	Hub     *realtime.Hub

	ClientOrigin   string
	RequestTimeout time.Duration
}

// Server bundles the router and its collaborators.
type Server struct {
	r       *chi.Mux
	eng     *engine.Engine
	hist    *history.Store
	invites *invite.Signer
	hub     *realtime.Hub
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		eng:     d.Engine,
		hist:    d.History,
		invites: d.Invites,
		hub:     d.Hub,
		now:     time.Now,
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(jsonContentType)         // default JSON responses
	s.r.Use(corsFor(d.ClientOrigin)) // single-origin CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-arena","endpoints":["/health","/api/wordle/*","/api/multiplayer/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		sessions, rooms := s.eng.Counts()
		writeJSON(w, http.StatusOK, map[string]int{
			"words":    s.eng.Dictionary().Len(),
			"sessions": sessions,
			"rooms":    rooms,
		})
	})

	s.mountWordle(timeout)
	s.mountMultiplayer(timeout)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "NOT_FOUND", Message: "no route for " + r.URL.Path, Code: http.StatusNotFound})
	})

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- errors ------------------------------------

// apiError is the body of every non-2xx response.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrInvalidFormat, http.StatusUnprocessableEntity, "INVALID_FORMAT"},
	{game.ErrUnknownWord, http.StatusUnprocessableEntity, "WORD_NOT_FOUND"},
	{game.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{game.ErrSessionTerminal, http.StatusConflict, "GAME_OVER"},
	{game.ErrRoomNotInProgress, http.StatusConflict, "ROOM_NOT_IN_PROGRESS"},
	{game.ErrPlayerFinished, http.StatusConflict, "PLAYER_FINISHED"},
	{game.ErrRoomFull, http.StatusConflict, "ROOM_FULL"},
	{game.ErrRoomNotWaiting, http.StatusConflict, "ROOM_NOT_WAITING"},
	{game.ErrCannotStart, http.StatusConflict, "CANNOT_START"},
	{game.ErrInvalidCapacity, http.StatusBadRequest, "INVALID_CAPACITY"},
	{invite.ErrInvalid, http.StatusBadRequest, "INVALID_INVITE"},
	{errBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
}

// classify maps err onto a status, a stable code and a client-safe message.
func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return apiError{Error: e.code, Message: err.Error(), Code: e.status}
		}
	}
	return apiError{Error: "INTERNAL_ERROR", Message: "internal server error", Code: http.StatusInternalServerError}
}

// writeError logs unexpected failures and writes the mapped error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := classify(err)
	if ae.Code >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeJSON(w, ae.Code, ae)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v, reporting errBadRequest on malformed input.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
