// internal/httpserver/routes_multiplayer.go
//
// HTTP routes for multiplayer rooms, mounted under /api/multiplayer:
//   - POST   /create-room                    → new WAITING room + invite token
//   - POST   /join-room                      → join by roomId or invite token
//   - POST   /start-game, /restart-game      → begin a round with a fresh word
//   - POST   /guess                          → submit a guess for one player
//   - GET    /room/{roomId}                  → room snapshot
//   - DELETE /room/{roomId}                  → drop a room, disconnect sockets
//   - GET    /rooms                          → joinable rooms, oldest first
//   - GET    /game-state/{roomId}/{playerId} → one player's round state
//   - GET    /leaderboard?limit=N            → room points per player
//   - GET    /ws/{roomId}                    → room event stream (socket.go)
//
// Every state change is also published to the room's websocket subscribers.

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

	"github.com/robalobadob/wordle/apps/arena-server/internal/engine"
	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/realtime"
	"github.com/robalobadob/wordle/apps/arena-server/internal/room"
)

func (s *Server) mountMultiplayer(timeout time.Duration) {
	s.r.Route("/api/multiplayer", func(r chi.Router) {
		// Long-lived; must not inherit the request timeout.
		r.Get("/ws/{roomId}", s.handleSocket)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(timeout))
			r.Post("/create-room", s.handleCreateRoom)
			r.Post("/join-room", s.handleJoinRoom)
			r.Post("/start-game", s.handleStartRoom)
			r.Post("/restart-game", s.handleRestartRoom)
			r.Post("/guess", s.handleRoomGuess)
			r.Get("/room/{roomId}", s.handleGetRoom)
			r.Delete("/room/{roomId}", s.handleDeleteRoom)
			r.Get("/rooms", s.handleListRooms)
			r.Get("/game-state/{roomId}/{playerId}", s.handlePlayerState)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
}

// ------------------------------- payloads ----------------------------------

type createRoomReq struct {
	CreatorID  string `json:"creatorId"`
	RoomName   string `json:"roomName"`
	Username   string `json:"username"`
	MaxPlayers int    `json:"maxPlayers"`
}

type createRoomRes struct {
	room.Snapshot
	InviteToken     string    `json:"inviteToken"`
	InviteExpiresAt time.Time `json:"inviteExpiresAt"`
}

type joinRoomReq struct {
	RoomID   string `json:"roomId"`
	Invite   string `json:"inviteToken"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

type roomReq struct {
	RoomID string `json:"roomId"`
}

type roomGuessReq struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

// roomGuessRes is the guesser's own state after a guess.
type roomGuessRes struct {
	room.PlayerState
	Result     []game.Verdict `json:"result"`
	RoomStatus room.Status    `json:"roomStatus"`
}

// guessEvent is the payload of GUESS_RESULT.
type guessEvent struct {
	PlayerID string         `json:"playerId"`
	Guess    string         `json:"guess"`
	Result   []game.Verdict `json:"result"`
	Room     room.Snapshot  `json:"room"`
}

// roomEvent is the payload of PLAYER_JOINED, GAME_STARTED and GAME_ENDED.
type roomEvent struct {
	Room       room.Snapshot `json:"room"`
	PlayerID   string        `json:"playerId,omitempty"`
	TargetWord string        `json:"targetWord,omitempty"`
}

// ------------------------------- handlers ----------------------------------

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CreatorID == "" {
		writeError(w, r, fmt.Errorf("%w: creatorId is required", errBadRequest))
		return
	}

	snap, err := s.eng.CreateRoom(r.Context(), engine.CreateRoomParams{
		CreatorID:   req.CreatorID,
		CreatorName: displayName(req.Username, req.CreatorID),
		Name:        req.RoomName,
		Capacity:    req.MaxPlayers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, exp, err := s.invites.Issue(snap.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("roomId", snap.ID).Str("playerId", req.CreatorID).Int("maxPlayers", snap.Capacity).Msg("room created")
	writeJSON(w, http.StatusOK, createRoomRes{Snapshot: snap, InviteToken: token, InviteExpiresAt: exp})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	roomID, err := s.resolveRoom(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.eng.JoinRoom(r.Context(), roomID, req.PlayerID, displayName(req.Username, req.PlayerID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.Publish(snap.ID, realtime.EventPlayerJoined, roomEvent{Room: snap, PlayerID: req.PlayerID})
	log.Info().Str("roomId", snap.ID).Str("playerId", req.PlayerID).Int("players", len(snap.Players)).Msg("player joined")
	writeJSON(w, http.StatusOK, snap)
}

// resolveRoom picks the room a join request targets.
// An invite token wins when present; a roomId alongside it must agree.
func (s *Server) resolveRoom(req joinRoomReq) (string, error) {
	if req.PlayerID == "" {
		return "", fmt.Errorf("%w: playerId is required", errBadRequest)
	}
	if req.Invite == "" {
		if req.RoomID == "" {
			return "", fmt.Errorf("%w: roomId or inviteToken is required", errBadRequest)
		}
		return req.RoomID, nil
	}
	roomID, err := s.invites.Verify(req.Invite)
	if err != nil {
		return "", err
	}
	if req.RoomID != "" && req.RoomID != roomID {
		return "", fmt.Errorf("%w: invite is for another room", errBadRequest)
	}
	return roomID, nil
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	s.beginRound(w, r, s.eng.StartRoom, "round started")
}

func (s *Server) handleRestartRoom(w http.ResponseWriter, r *http.Request) {
	s.beginRound(w, r, s.eng.RestartRoom, "round restarted")
}

func (s *Server) beginRound(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (room.Snapshot, error), msg string) {
	var req roomReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := op(r.Context(), req.RoomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.Publish(snap.ID, realtime.EventGameStarted, roomEvent{Room: snap})
	log.Info().Str("roomId", snap.ID).Int("players", len(snap.Players)).Msg(msg)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRoomGuess(w http.ResponseWriter, r *http.Request) {
	var req roomGuessReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.roomGuess(r.Context(), req.RoomID, req.PlayerID, req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomGuessRes{PlayerState: res.Player, Result: res.Verdicts, RoomStatus: res.Room.Status})
}

// roomGuess applies a guess and fans the outcome out to subscribers.
// Shared by the REST route and the websocket GUESS message.
func (s *Server) roomGuess(ctx context.Context, roomID, playerID, raw string) (engine.RoomGuess, error) {
	res, err := s.eng.GuessInRoom(ctx, roomID, playerID, raw)
	if err != nil {
		return engine.RoomGuess{}, err
	}
	last := res.Player.Guesses[len(res.Player.Guesses)-1]
	s.hub.Publish(roomID, realtime.EventGuessResult, guessEvent{
		PlayerID: playerID,
		Guess:    last.Word,
		Result:   res.Verdicts,
		Room:     res.Room,
	})
	if res.Finished() {
		s.hub.Publish(roomID, realtime.EventGameEnded, roomEvent{Room: res.Room, TargetWord: res.Room.Target})
		s.recordRound(ctx, res.Room)
	}
	return res, nil
}

// recordRound writes a finished round's placements to the ledger.
func (s *Server) recordRound(ctx context.Context, snap room.Snapshot) {
	if err := s.hist.RecordRound(context.WithoutCancel(ctx), snap, s.now()); err != nil {
		log.Warn().Err(err).Str("roomId", snap.ID).Msg("record round")
		return
	}
	log.Info().Str("roomId", snap.ID).Str("winnerId", snap.FirstWinnerID).Msg("round finished")
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	snap, err := s.eng.GetRoom(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if err := s.eng.DeleteRoom(r.Context(), roomID); err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.Publish(roomID, realtime.EventRoomDeleted, roomReq{RoomID: roomID})
	s.hub.CloseRoom(roomID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.eng.ListWaitingRooms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	ps, err := s.eng.PlayerState(r.Context(), chi.URLParam(r, "roomId"), chi.URLParam(r, "playerId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		limit = n
	}
	rows, err := s.hist.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// displayName falls back to the player id when no username is given.
func displayName(username, playerID string) string {
	if username != "" {
		return username
	}
	return playerID
}
