// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Mark / Verdict: per-letter result of a guess (hit/present/miss).
//   - Guess: one evaluated round.
//   - Outcome: the single-player state machine's states.
//   - Session: state for a single in-progress or finished game.

package game

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "HIT":     letter is correct and in the correct position.
//   - "PRESENT": letter exists in the answer at another, unconsumed position.
//   - "MISS":    letter has no remaining match in the answer.
type Mark string

const (
	MarkHit     Mark = "HIT"
	MarkPresent Mark = "PRESENT"
	MarkMiss    Mark = "MISS"
)

// Verdict pairs a guessed letter with its Mark. Index i of a verdict slice
// always describes guess[i].
type Verdict struct {
	Letter string `json:"letter"`
	Status Mark   `json:"status"`
}

// Guess is one submitted word together with its evaluation.
type Guess struct {
	Word     string    `json:"word"`
	Verdicts []Verdict `json:"verdicts"`
}

// Outcome is the state of a single-player Session.
type Outcome string

const (
	OutcomeActive Outcome = "ACTIVE"
	OutcomeWon    Outcome = "WON"
	OutcomeLost   Outcome = "LOST"
)

// Terminal reports whether no further guesses are accepted.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeWon, OutcomeLost:
		return true
	case OutcomeActive:
		return false
	default:
		return true
	}
}

// Session holds the state of a single-player game.
type Session struct {
	ID        string  // Unique session identifier (UUID).
	Target    string  // The solution word (uppercase); never changes.
	MaxRounds int     // Maximum number of guesses allowed (≥1).
	History   []Guess // Guesses made so far, in order.
	Outcome   Outcome // ACTIVE until won or rounds exhausted.
}

// SessionSnapshot is the externally visible view of a Session.
// Target is empty while the game is still active.
type SessionSnapshot struct {
	ID         string  `json:"gameId"`
	Guesses    []Guess `json:"guesses"`
	RoundsUsed int     `json:"currentRound"`
	MaxRounds  int     `json:"maxRounds"`
	Outcome    Outcome `json:"outcome"`
	GameOver   bool    `json:"gameOver"`
	Won        bool    `json:"won"`
	Target     string  `json:"targetWord,omitempty"`
}
