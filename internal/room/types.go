// internal/room/types.go
//
// Type definitions for multiplayer rooms.
// Defines:
//   - Status: the room state machine (WAITING → IN_PROGRESS → FINISHED).
//   - Player: one participant's progress in the current round.
//   - Room: roster, shared target word, and round bookkeeping.
//   - Snapshot / PlayerState: externally visible views.

package room

import (
	"time"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
)

// Status is the state of a Room.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

const (
	// RoundLimit is the fixed number of guesses each player gets per round.
	RoundLimit = 6
	// DefaultCapacity is used when a room is created without a capacity.
	DefaultCapacity = 4
	// MinCapacity is the smallest room that can ever be started.
	MinCapacity = 2
)

// Player holds one participant's state for the current round.
type Player struct {
	ID      string
	Name    string
	History []game.Guess
	Won     bool
	WinTime time.Time // zero until Won
	Rank    int       // 0 = unranked
	Points  int
}

// Room holds the state of a multiplayer game.
type Room struct {
	ID            string
	Name          string
	CreatorID     string
	Players       []*Player // join order, unique ids
	Capacity      int
	Status        Status
	Target        string // empty while WAITING
	CreatedAt     time.Time
	FirstWinnerID string // set once per round
}

// PlayerView is a detached copy of a Player.
type PlayerView struct {
	ID         string       `json:"playerId"`
	Name       string       `json:"username"`
	Guesses    []game.Guess `json:"guesses"`
	RoundsUsed int          `json:"currentRound"`
	Finished   bool         `json:"finished"`
	Won        bool         `json:"hasWon"`
	WinTime    *time.Time   `json:"winTime,omitempty"`
	Rank       int          `json:"rank"`
	Points     int          `json:"points"`
}

// Snapshot is the externally visible view of a Room.
// Target is empty unless the room is FINISHED.
type Snapshot struct {
	ID            string       `json:"roomId"`
	Name          string       `json:"roomName"`
	CreatorID     string       `json:"creatorId"`
	Players       []PlayerView `json:"players"`
	Capacity      int          `json:"maxPlayers"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	FirstWinnerID string       `json:"winnerId,omitempty"`
	Target        string       `json:"currentWord,omitempty"`
}

// PlayerState is a single player's view of the round.
type PlayerState struct {
	PlayerView
	Target string `json:"targetWord,omitempty"`
}
