// internal/engine/engine.go
//
// Engine is the single entry point the transport layer talks to.
// It is constructed once with a dictionary, a random source and a clock, owns
// the session and room stores, and runs every operation as one atomic
// read-modify-write on the affected id. It performs no I/O.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/room"
	"github.com/robalobadob/wordle/apps/arena-server/internal/store"
	"github.com/robalobadob/wordle/apps/arena-server/internal/words"
)

// Engine bundles the dictionary and both entity stores.
type Engine struct {
	dict     *words.Dictionary
	src      words.Source
	now      func() time.Time
	sessions *store.Memory[*game.Session]
	rooms    *store.Memory[*room.Room]
}

// New constructs an Engine. A nil src uses words.CryptoSource; a nil now uses time.Now.
func New(dict *words.Dictionary, src words.Source, now func() time.Time) *Engine {
	if src == nil {
		src = words.CryptoSource{}
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		dict:     dict,
		src:      src,
		now:      now,
		sessions: store.NewMemory[*game.Session](now),
		rooms:    store.NewMemory[*room.Room](now),
	}
}

// Dictionary exposes the read-only dictionary.
func (e *Engine) Dictionary() *words.Dictionary { return e.dict }

// notFound converts store misses into the engine taxonomy.
func notFound(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, game.ErrNotFound)
	}
	return err
}

// ------------------------------ single player -------------------------------

// NewGame starts a session with a random word. maxRounds ≤ 0 means the default.
func (e *Engine) NewGame(ctx context.Context, maxRounds int) (game.SessionSnapshot, error) {
	s := game.NewSession(uuid.NewString(), e.dict.Random(e.src), maxRounds)
	if err := e.sessions.Create(ctx, s.ID, s); err != nil {
		return game.SessionSnapshot{}, err
	}
	return s.Snapshot(), nil
}

// Guess applies a guess to a session and returns the verdicts and new state.
func (e *Engine) Guess(ctx context.Context, gameID, raw string) ([]game.Verdict, game.SessionSnapshot, error) {
	var (
		verdicts []game.Verdict
		snap     game.SessionSnapshot
	)
	err := e.sessions.Update(ctx, gameID, func(s *game.Session) error {
		v, err := s.ApplyGuess(e.dict, raw)
		if err != nil {
			return err
		}
		verdicts, snap = v, s.Snapshot()
		return nil
	})
	if err != nil {
		return nil, game.SessionSnapshot{}, notFound("game", gameID, err)
	}
	return verdicts, snap, nil
}

// GetGame returns a session snapshot.
func (e *Engine) GetGame(ctx context.Context, gameID string) (game.SessionSnapshot, error) {
	var snap game.SessionSnapshot
	if err := e.sessions.View(ctx, gameID, func(s *game.Session) { snap = s.Snapshot() }); err != nil {
		return game.SessionSnapshot{}, notFound("game", gameID, err)
	}
	return snap, nil
}

// DeleteGame removes a session. Missing ids are not an error.
func (e *Engine) DeleteGame(ctx context.Context, gameID string) error {
	return e.sessions.Delete(ctx, gameID)
}

// ------------------------------- multiplayer --------------------------------

// CreateRoomParams describes a new room. Capacity 0 means room.DefaultCapacity.
type CreateRoomParams struct {
	CreatorID   string
	CreatorName string
	Name        string
	Capacity    int
}

// RoomGuess is the result of a guess inside a room.
type RoomGuess struct {
	Verdicts []game.Verdict
	Player   room.PlayerState
	Room     room.Snapshot
}

// Finished reports whether the guess ended the round.
func (g RoomGuess) Finished() bool { return g.Room.Status == room.StatusFinished }

// CreateRoom creates a WAITING room holding its creator.
func (e *Engine) CreateRoom(ctx context.Context, p CreateRoomParams) (room.Snapshot, error) {
	for {
		r, err := room.New(newRoomID(), p.Name, p.CreatorID, p.CreatorName, p.Capacity, e.now())
		if err != nil {
			return room.Snapshot{}, err
		}
		err = e.rooms.Create(ctx, r.ID, r)
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			return room.Snapshot{}, err
		}
		return r.Snapshot(), nil
	}
}

// newRoomID returns a short, shareable room code.
func newRoomID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// JoinRoom adds a player to a WAITING room.
func (e *Engine) JoinRoom(ctx context.Context, roomID, playerID, name string) (room.Snapshot, error) {
	return e.updateRoom(ctx, roomID, func(r *room.Room) error {
		return r.Join(playerID, name)
	})
}

// StartRoom begins the first round.
func (e *Engine) StartRoom(ctx context.Context, roomID string) (room.Snapshot, error) {
	return e.updateRoom(ctx, roomID, func(r *room.Room) error {
		return r.Start(e.dict, e.src)
	})
}

// RestartRoom begins a fresh round with a new word in a started room.
func (e *Engine) RestartRoom(ctx context.Context, roomID string) (room.Snapshot, error) {
	return e.updateRoom(ctx, roomID, func(r *room.Room) error {
		return r.Restart(e.dict, e.src)
	})
}

func (e *Engine) updateRoom(ctx context.Context, roomID string, fn func(*room.Room) error) (room.Snapshot, error) {
	var snap room.Snapshot
	err := e.rooms.Update(ctx, roomID, func(r *room.Room) error {
		if err := fn(r); err != nil {
			return err
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return room.Snapshot{}, notFound("room", roomID, err)
	}
	return snap, nil
}

// GuessInRoom applies a player's guess; the round may end as a result.
func (e *Engine) GuessInRoom(ctx context.Context, roomID, playerID, raw string) (RoomGuess, error) {
	var out RoomGuess
	err := e.rooms.Update(ctx, roomID, func(r *room.Room) error {
		v, err := r.ApplyGuess(e.dict, playerID, raw, e.now())
		if err != nil {
			return err
		}
		ps, err := r.PlayerState(playerID)
		if err != nil {
			return err
		}
		out = RoomGuess{Verdicts: v, Player: ps, Room: r.Snapshot()}
		return nil
	})
	if err != nil {
		return RoomGuess{}, notFound("room", roomID, err)
	}
	return out, nil
}

// GetRoom returns a room snapshot.
func (e *Engine) GetRoom(ctx context.Context, roomID string) (room.Snapshot, error) {
	var snap room.Snapshot
	if err := e.rooms.View(ctx, roomID, func(r *room.Room) { snap = r.Snapshot() }); err != nil {
		return room.Snapshot{}, notFound("room", roomID, err)
	}
	return snap, nil
}

// PlayerState returns one player's view of a room round.
func (e *Engine) PlayerState(ctx context.Context, roomID, playerID string) (room.PlayerState, error) {
	var (
		ps   room.PlayerState
		perr error
	)
	if err := e.rooms.View(ctx, roomID, func(r *room.Room) { ps, perr = r.PlayerState(playerID) }); err != nil {
		return room.PlayerState{}, notFound("room", roomID, err)
	}
	return ps, perr
}

// DeleteRoom removes a room. Missing ids are not an error.
func (e *Engine) DeleteRoom(ctx context.Context, roomID string) error {
	return e.rooms.Delete(ctx, roomID)
}

// ListWaitingRooms returns WAITING rooms with spare capacity, oldest first.
func (e *Engine) ListWaitingRooms(ctx context.Context) ([]room.Snapshot, error) {
	out := []room.Snapshot{}
	err := e.rooms.Range(ctx, func(_ string, r *room.Room) {
		if r.Status == room.StatusWaiting && !r.Full() {
			out = append(out, r.Snapshot())
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ---------------------------------- upkeep ----------------------------------

// Sweep evicts sessions and rooms idle for longer than the given TTLs.
// A non-positive TTL leaves that store alone.
func (e *Engine) Sweep(sessionIdle, roomIdle time.Duration) (sessions, rooms []string) {
	return e.sessions.Sweep(sessionIdle), e.rooms.Sweep(roomIdle)
}

// Counts reports how many sessions and rooms are live.
func (e *Engine) Counts() (sessions, rooms int) {
	return e.sessions.Len(), e.rooms.Len()
}
