package room

import (
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/words"
)

type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testDict(t *testing.T) *words.Dictionary {
	t.Helper()
	d, err := words.New([]string{"CRANE", "SLATE", "PILOT", "STEEL", "SPEED"})
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	return d
}

// startedRoom returns an IN_PROGRESS room targeting CRANE with players a, b, c.
func startedRoom(t *testing.T, dict *words.Dictionary) *Room {
	t.Helper()
	r, err := New("R1", "test", "a", "Alice", 0, t0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, id := range []string{"b", "c"} {
		if err := r.Join(id, id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if err := r.Start(dict, fixedSource(0)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Target != "CRANE" {
		t.Fatalf("expected CRANE, got %s", r.Target)
	}
	return r
}

func mustGuess(t *testing.T, r *Room, dict *words.Dictionary, id, word string, at time.Time) []game.Verdict {
	t.Helper()
	v, err := r.ApplyGuess(dict, id, word, at)
	if err != nil {
		t.Fatalf("guess %s by %s: %v", word, id, err)
	}
	return v
}

func TestNewRoom(t *testing.T) {
	r, err := New("R1", "lobby", "a", "Alice", 0, t0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.Capacity != DefaultCapacity || r.Status != StatusWaiting || len(r.Players) != 1 || r.Target != "" {
		t.Fatalf("unexpected room %+v", r)
	}
	if _, err := New("R2", "tiny", "a", "Alice", 1, t0); !errors.Is(err, game.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestJoinCapacityAndIdempotence(t *testing.T) {
	r, err := New("R1", "lobby", "a", "Alice", 2, t0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Join("b", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Join("b", "Bob again"); err != nil {
		t.Fatalf("rejoin should be a no-op, got %v", err)
	}
	if len(r.Players) != 2 || r.Players[1].Name != "Bob" {
		t.Fatalf("roster changed on rejoin: %+v", r.Players)
	}
	if err := r.Join("c", "Carol"); !errors.Is(err, game.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestJoinAfterStart(t *testing.T) {
	dict := testDict(t)
	r := startedRoom(t, dict)
	r.Capacity = 5
	if err := r.Join("d", "Dan"); !errors.Is(err, game.ErrRoomNotWaiting) {
		t.Fatalf("expected ErrRoomNotWaiting, got %v", err)
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	dict := testDict(t)
	r, _ := New("R1", "lobby", "a", "Alice", 0, t0)
	if err := r.Start(dict, fixedSource(0)); !errors.Is(err, game.ErrCannotStart) {
		t.Fatalf("expected ErrCannotStart, got %v", err)
	}
	if r.Status != StatusWaiting || r.Target != "" {
		t.Fatalf("failed start mutated room: %+v", r)
	}
	_ = r.Join("b", "Bob")
	if err := r.Start(dict, fixedSource(1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(dict, fixedSource(1)); !errors.Is(err, game.ErrCannotStart) {
		t.Fatalf("second start should fail, got %v", err)
	}
}

func TestGuessPreconditions(t *testing.T) {
	dict := testDict(t)
	r, _ := New("R1", "lobby", "a", "Alice", 0, t0)
	_ = r.Join("b", "Bob")
	if _, err := r.ApplyGuess(dict, "a", "CRANE", t0); !errors.Is(err, game.ErrRoomNotInProgress) {
		t.Fatalf("expected ErrRoomNotInProgress, got %v", err)
	}

	r = startedRoom(t, dict)
	if _, err := r.ApplyGuess(dict, "zed", "CRANE", t0); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.ApplyGuess(dict, "a", "CRN", t0); !errors.Is(err, game.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if _, err := r.ApplyGuess(dict, "a", "ZZZZZ", t0); !errors.Is(err, game.ErrUnknownWord) {
		t.Fatalf("expected ErrUnknownWord, got %v", err)
	}
	if p, _ := r.Player("a"); p.RoundsUsed() != 0 {
		t.Fatal("rejected guesses must not be recorded")
	}
}

func TestFirstWinnerEndsRoundAndRanks(t *testing.T) {
	dict := testDict(t)
	r := startedRoom(t, dict)

	mustGuess(t, r, dict, "b", "SLATE", t0)
	mustGuess(t, r, dict, "b", "PILOT", t0.Add(time.Second))
	mustGuess(t, r, dict, "c", "STEEL", t0.Add(2*time.Second))

	if snap := r.Snapshot(); snap.Target != "" || snap.Status != StatusInProgress {
		t.Fatalf("in-progress snapshot leaks target: %+v", snap)
	}

	v := mustGuess(t, r, dict, "a", "crane", t0.Add(3*time.Second))
	if !game.AllHit(v) {
		t.Fatalf("expected all hits, got %+v", v)
	}
	if r.Status != StatusFinished || r.FirstWinnerID != "a" {
		t.Fatalf("expected FINISHED with winner a, got %s/%s", r.Status, r.FirstWinnerID)
	}

	want := map[string][2]int{
		"a": {1, 10},
		"c": {2, 7}, // one round used
		"b": {3, 5}, // two rounds used
	}
	for id, rp := range want {
		p, _ := r.Player(id)
		if p.Rank != rp[0] || p.Points != rp[1] {
			t.Fatalf("player %s: rank=%d points=%d, want %v", id, p.Rank, p.Points, rp)
		}
	}

	snap := r.Snapshot()
	if snap.Target != "CRANE" || snap.FirstWinnerID != "a" {
		t.Fatalf("finished snapshot should reveal target: %+v", snap)
	}
	if snap.Players[0].WinTime == nil || !snap.Players[0].WinTime.Equal(t0.Add(3*time.Second)) {
		t.Fatalf("expected win time on winner view, got %v", snap.Players[0].WinTime)
	}
	if _, err := r.ApplyGuess(dict, "b", "CRANE", t0); !errors.Is(err, game.ErrRoomNotInProgress) {
		t.Fatalf("expected ErrRoomNotInProgress after finish, got %v", err)
	}
}

func TestAllPlayersExhaustRounds(t *testing.T) {
	dict := testDict(t)
	r, _ := New("R1", "duo", "a", "Alice", 2, t0)
	_ = r.Join("b", "Bob")
	_ = r.Start(dict, fixedSource(0))

	for i := 0; i < RoundLimit; i++ {
		mustGuess(t, r, dict, "a", "SLATE", t0)
	}
	if _, err := r.ApplyGuess(dict, "a", "SLATE", t0); !errors.Is(err, game.ErrPlayerFinished) {
		t.Fatalf("expected ErrPlayerFinished, got %v", err)
	}
	if r.Status != StatusInProgress {
		t.Fatal("round must continue while b can still guess")
	}
	for i := 0; i < RoundLimit; i++ {
		mustGuess(t, r, dict, "b", "PILOT", t0)
	}
	if r.Status != StatusFinished || r.FirstWinnerID != "" {
		t.Fatalf("expected FINISHED without winner, got %s/%q", r.Status, r.FirstWinnerID)
	}
	a, _ := r.Player("a")
	b, _ := r.Player("b")
	if a.Rank != 1 || b.Rank != 2 || a.Points != 10 || b.Points != 7 {
		t.Fatalf("ties keep join order: a=%d/%d b=%d/%d", a.Rank, a.Points, b.Rank, b.Points)
	}
}

func TestRestartResetsRound(t *testing.T) {
	dict := testDict(t)
	r := startedRoom(t, dict)
	mustGuess(t, r, dict, "a", "CRANE", t0)

	if err := r.Restart(dict, fixedSource(1)); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if r.Status != StatusInProgress || r.Target != "SLATE" || r.FirstWinnerID != "" {
		t.Fatalf("unexpected room after restart: %+v", r)
	}
	for _, p := range r.Players {
		if p.RoundsUsed() != 0 || p.Won || !p.WinTime.IsZero() || p.Rank != 0 || p.Points != 0 {
			t.Fatalf("player %s not reset: %+v", p.ID, p)
		}
	}

	waiting, _ := New("R2", "lobby", "a", "Alice", 0, t0)
	_ = waiting.Join("b", "Bob")
	if err := waiting.Restart(dict, fixedSource(0)); !errors.Is(err, game.ErrCannotStart) {
		t.Fatalf("expected ErrCannotStart for waiting room, got %v", err)
	}
}

func TestPlayerState(t *testing.T) {
	dict := testDict(t)
	r := startedRoom(t, dict)
	mustGuess(t, r, dict, "b", "SLATE", t0)

	ps, err := r.PlayerState("b")
	if err != nil {
		t.Fatalf("player state: %v", err)
	}
	if ps.RoundsUsed != 1 || ps.Finished || ps.Target != "" {
		t.Fatalf("unexpected state %+v", ps)
	}
	if _, err := r.PlayerState("zed"); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mustGuess(t, r, dict, "b", "CRANE", t0)
	ps, _ = r.PlayerState("b")
	if ps.Target != "CRANE" || !ps.Won || ps.Rank != 1 {
		t.Fatalf("unexpected finished state %+v", ps)
	}
}
