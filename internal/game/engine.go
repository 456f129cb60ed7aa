// internal/game/engine.go
//
// Core game engine for a single Wordle session.
// Responsibilities:
//   - Create new sessions bound to one target word and a round limit.
//   - Validate and apply guesses (length, alphabetic, dictionary membership).
//   - Score guesses with the two-pass consume-by-position algorithm.
//   - Track state transitions: ACTIVE → WON | LOST.
//
// Notes:
//   - The dictionary is handed in by the caller; this package performs no I/O.
//   - Sessions are not safe for concurrent use. The store serializes access
//     per session id.
package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/wordle/apps/arena-server/internal/words"
)

// DefaultMaxRounds is used when a non-positive round limit is requested.
const DefaultMaxRounds = 6

// NewSession constructs a session for target. Non-positive maxRounds falls
// back to DefaultMaxRounds.
func NewSession(id, target string, maxRounds int) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Session{
		ID:        id,
		Target:    strings.ToUpper(target),
		MaxRounds: maxRounds,
		History:   []Guess{},
		Outcome:   OutcomeActive,
	}
}

// RoundsUsed is the number of accepted guesses.
func (s *Session) RoundsUsed() int { return len(s.History) }

// ApplyGuess validates and scores a guess, mutating the session state.
// Returns the per-letter verdicts or an error; on error the session is unchanged.
//
// Validation rules:
//   - Session must still be ACTIVE (ErrSessionTerminal).
//   - Guess must be 5 letters after trim+uppercase (ErrInvalidFormat).
//   - Guess must be a dictionary word (ErrUnknownWord).
//
// State transitions:
//   - Guess equals target → WON.
//   - Else rounds used reaches MaxRounds → LOST.
func (s *Session) ApplyGuess(dict *words.Dictionary, raw string) ([]Verdict, error) {
	if s.Outcome.Terminal() {
		return nil, ErrSessionTerminal
	}
	guess, err := NormalizeGuess(dict, raw)
	if err != nil {
		return nil, err
	}

	verdicts := Evaluate(s.Target, guess)
	s.History = append(s.History, Guess{Word: guess, Verdicts: verdicts})

	switch {
	case guess == s.Target:
		s.Outcome = OutcomeWon
	case s.RoundsUsed() >= s.MaxRounds:
		s.Outcome = OutcomeLost
	}
	return verdicts, nil
}

// Snapshot returns a detached copy of the session for external callers.
// The target word is only included once the session is terminal.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:         s.ID,
		Guesses:    CopyGuesses(s.History),
		RoundsUsed: s.RoundsUsed(),
		MaxRounds:  s.MaxRounds,
		Outcome:    s.Outcome,
		GameOver:   s.Outcome.Terminal(),
		Won:        s.Outcome == OutcomeWon,
	}
	if snap.GameOver {
		snap.Target = s.Target
	}
	return snap
}

// NormalizeGuess trims and uppercases raw, then checks shape and membership.
// ErrInvalidFormat and ErrUnknownWord are kept distinct so a client can tell
// "not 5 letters" apart from "not a real word".
func NormalizeGuess(dict *words.Dictionary, raw string) (string, error) {
	guess := strings.ToUpper(strings.TrimSpace(raw))
	if len(guess) != words.WordLength || !words.IsAlpha(guess) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	if !dict.Contains(guess) {
		return "", fmt.Errorf("%w: %s", ErrUnknownWord, guess)
	}
	return guess, nil
}

// Evaluate scores guess against target. Both must be normalized and of equal
// length; no validation happens here.
//
// Pass 1:
//   - Exact positional matches are HIT; both positions are consumed.
//
// Pass 2:
//   - Every other guess letter takes the leftmost unconsumed target position
//     holding the same letter (PRESENT) or stays MISS.
//
// Each target letter satisfies at most one guess letter, which keeps repeated
// letters correct.
func Evaluate(target, guess string) []Verdict {
	n := len(guess)
	out := make([]Verdict, n)
	targetUsed := make([]bool, n)
	guessUsed := make([]bool, n)

	for i := 0; i < n; i++ {
		out[i] = Verdict{Letter: guess[i : i+1], Status: MarkMiss}
		if guess[i] == target[i] {
			out[i].Status = MarkHit
			targetUsed[i], guessUsed[i] = true, true
		}
	}

	for i := 0; i < n; i++ {
		if guessUsed[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if !targetUsed[j] && guess[i] == target[j] {
				out[i].Status = MarkPresent
				targetUsed[j] = true
				break
			}
		}
	}
	return out
}

// AllHit returns true if every verdict is a HIT.
func AllHit(v []Verdict) bool {
	for _, x := range v {
		if x.Status != MarkHit {
			return false
		}
	}
	return true
}

// CopyGuesses returns a deep copy of a guess history.
func CopyGuesses(in []Guess) []Guess {
	out := make([]Guess, len(in))
	for i, g := range in {
		out[i] = Guess{Word: g.Word, Verdicts: append([]Verdict(nil), g.Verdicts...)}
	}
	return out
}
