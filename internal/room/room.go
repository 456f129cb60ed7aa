// internal/room/room.go
//
// Multiplayer room state machine.
// Responsibilities:
//   - Roster management (create with creator, join with capacity checks).
//   - Round lifecycle: start, restart, guesses, and the round-end predicate.
//   - Visibility: the target word never leaves the room before FINISHED.
//
// Rooms are not safe for concurrent use; the store serializes access per room
// id so a whole guess (validate, mutate, round-end, ranking) is atomic.

package room

import (
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/words"
)

// New creates a WAITING room containing only its creator.
// capacity 0 means DefaultCapacity.
func New(id, name, creatorID, creatorName string, capacity int, now time.Time) (*Room, error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < MinCapacity {
		return nil, fmt.Errorf("%w: got %d", game.ErrInvalidCapacity, capacity)
	}
	return &Room{
		ID:        id,
		Name:      name,
		CreatorID: creatorID,
		Players:   []*Player{newPlayer(creatorID, creatorName)},
		Capacity:  capacity,
		Status:    StatusWaiting,
		CreatedAt: now,
	}, nil
}

func newPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, History: []game.Guess{}}
}

// RoundsUsed is the number of guesses made this round.
func (p *Player) RoundsUsed() int { return len(p.History) }

// Finished reports whether the player can no longer guess this round.
func (p *Player) Finished() bool { return p.Won || p.RoundsUsed() >= RoundLimit }

func (p *Player) reset() {
	p.History = []game.Guess{}
	p.Won = false
	p.WinTime = time.Time{}
	p.Rank = 0
	p.Points = 0
}

// Full reports whether the roster has reached capacity.
func (r *Room) Full() bool { return len(r.Players) >= r.Capacity }

// Player looks up a player by id.
func (r *Room) Player(id string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Join adds a player. Joining twice with the same id is a no-op.
func (r *Room) Join(playerID, name string) error {
	if _, ok := r.Player(playerID); ok {
		return nil
	}
	if r.Full() {
		return game.ErrRoomFull
	}
	if r.Status != StatusWaiting {
		return game.ErrRoomNotWaiting
	}
	r.Players = append(r.Players, newPlayer(playerID, name))
	return nil
}

// CanStart reports whether Start would succeed.
func (r *Room) CanStart() bool {
	return r.Status == StatusWaiting && len(r.Players) >= MinCapacity
}

// Start begins the first round with a word drawn from dict.
func (r *Room) Start(dict *words.Dictionary, src words.Source) error {
	if !r.CanStart() {
		return fmt.Errorf("%w: status %s with %d players", game.ErrCannotStart, r.Status, len(r.Players))
	}
	r.beginRound(dict.Random(src))
	return nil
}

// Restart begins a fresh round in a room that has already been started.
func (r *Room) Restart(dict *words.Dictionary, src words.Source) error {
	switch r.Status {
	case StatusInProgress, StatusFinished:
	case StatusWaiting:
		return fmt.Errorf("%w: room has not been started", game.ErrCannotStart)
	default:
		return fmt.Errorf("%w: unknown status %s", game.ErrCannotStart, r.Status)
	}
	if len(r.Players) < MinCapacity {
		return fmt.Errorf("%w: %d players", game.ErrCannotStart, len(r.Players))
	}
	r.beginRound(dict.Random(src))
	return nil
}

func (r *Room) beginRound(target string) {
	r.Target = target
	r.Status = StatusInProgress
	r.FirstWinnerID = ""
	for _, p := range r.Players {
		p.reset()
	}
}

// ApplyGuess validates and scores a player's guess against the room word,
// then evaluates the round-end predicate. Nothing is mutated on error.
func (r *Room) ApplyGuess(dict *words.Dictionary, playerID, raw string, now time.Time) ([]game.Verdict, error) {
	if r.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: status %s", game.ErrRoomNotInProgress, r.Status)
	}
	p, ok := r.Player(playerID)
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, game.ErrNotFound)
	}
	if p.Finished() {
		return nil, game.ErrPlayerFinished
	}
	guess, err := game.NormalizeGuess(dict, raw)
	if err != nil {
		return nil, err
	}

	verdicts := game.Evaluate(r.Target, guess)
	p.History = append(p.History, game.Guess{Word: guess, Verdicts: verdicts})
	if guess == r.Target {
		p.Won = true
		p.WinTime = now
		if r.FirstWinnerID == "" {
			r.FirstWinnerID = p.ID
		}
	}

	if r.roundOver() {
		r.Status = StatusFinished
		Rank(r.Players)
	}
	return verdicts, nil
}

// roundOver is true once someone has won or nobody can guess any more.
func (r *Room) roundOver() bool {
	if r.FirstWinnerID != "" {
		return true
	}
	for _, p := range r.Players {
		if !p.Finished() {
			return false
		}
	}
	return true
}

// Snapshot returns a detached view, hiding the word until FINISHED.
func (r *Room) Snapshot() Snapshot {
	s := Snapshot{
		ID:            r.ID,
		Name:          r.Name,
		CreatorID:     r.CreatorID,
		Players:       make([]PlayerView, len(r.Players)),
		Capacity:      r.Capacity,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		FirstWinnerID: r.FirstWinnerID,
	}
	for i, p := range r.Players {
		s.Players[i] = p.view()
	}
	if r.Status == StatusFinished {
		s.Target = r.Target
	}
	return s
}

// PlayerState returns one player's view of the round.
func (r *Room) PlayerState(playerID string) (PlayerState, error) {
	p, ok := r.Player(playerID)
	if !ok {
		return PlayerState{}, fmt.Errorf("player %s: %w", playerID, game.ErrNotFound)
	}
	ps := PlayerState{PlayerView: p.view()}
	if r.Status == StatusFinished {
		ps.Target = r.Target
	}
	return ps, nil
}

func (p *Player) view() PlayerView {
	v := PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		Guesses:    game.CopyGuesses(p.History),
		RoundsUsed: p.RoundsUsed(),
		Finished:   p.Finished(),
		Won:        p.Won,
		Rank:       p.Rank,
		Points:     p.Points,
	}
	if !p.WinTime.IsZero() {
		t := p.WinTime
		v.WinTime = &t
	}
	return v
}
