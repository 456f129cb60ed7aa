// internal/httpserver/socket.go
//
// Room websocket: GET /api/multiplayer/ws/{roomId}.
// Subscribers receive every room event as a {type, payload} envelope and may
// submit guesses with {type:"GUESS", payload:{playerId, guess}}. Failures are
// reported to the sender alone as an ERROR envelope.

package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/arena-server/internal/realtime"
)

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if _, err := s.eng.GetRoom(r.Context(), roomID); err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.Serve(w, r, roomID, s.onSocketMessage)
}

func (s *Server) onSocketMessage(ctx context.Context, c *realtime.Client, env realtime.Envelope) {
	switch env.T {
	case realtime.MsgGuess:
		msg, err := realtime.DecodePayload[realtime.GuessMsg](env)
		if err != nil {
			c.Send(realtime.EventError, realtime.ErrorMsg{Error: "BAD_REQUEST", Message: "Malformed guess payload."})
			return
		}
		if _, err := s.roomGuess(ctx, c.RoomID(), msg.PlayerID, msg.Guess); err != nil {
			ae := classify(err)
			if ae.Code >= http.StatusInternalServerError {
				log.Error().Err(err).Str("roomId", c.RoomID()).Str("playerId", msg.PlayerID).Msg("socket guess")
			}
			c.Send(realtime.EventError, realtime.ErrorMsg{Error: ae.Error, Message: ae.Message})
		}
	default:
		c.Send(realtime.EventError, realtime.ErrorMsg{Error: "UNKNOWN_TYPE", Message: "Unsupported message type " + env.T + "."})
	}
}
