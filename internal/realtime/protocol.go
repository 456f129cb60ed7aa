package realtime

import (
	"encoding/json"
	"fmt"
)

// Event and message types carried in Envelope.T.
const (
	EventPlayerJoined = "PLAYER_JOINED"
	EventGameStarted  = "GAME_STARTED"
	EventGuessResult  = "GUESS_RESULT"
	EventGameEnded    = "GAME_ENDED"
	EventRoomDeleted  = "ROOM_DELETED"
	EventError        = "ERROR"

	// MsgGuess is sent by clients to submit a guess over the socket.
	MsgGuess = "GUESS"
)

// Envelope is the frame for every websocket message in both directions.
type Envelope struct {
	T string          `json:"type"`
	P json.RawMessage `json:"payload"`
}

// Encode wraps payload in an Envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty envelope type")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses a raw frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode: empty frame")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// DecodePayload unmarshals the payload of env into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// GuessMsg is the payload of MsgGuess.
type GuessMsg struct {
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

// ErrorMsg is the payload of EventError.
type ErrorMsg struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
