package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/room"
)

var at = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTest(t)
	if err := migrate(s.db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRecordGameAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	games := []game.SessionSnapshot{
		{ID: "g1", RoundsUsed: 3, MaxRounds: 6, GameOver: true, Won: true, Target: "CRANE"},
		{ID: "g2", RoundsUsed: 3, MaxRounds: 6, GameOver: true, Won: true, Target: "SLATE"},
		{ID: "g3", RoundsUsed: 6, MaxRounds: 6, GameOver: true, Won: false, Target: "PILOT"},
	}
	for _, g := range games {
		if err := s.RecordGame(ctx, g, at); err != nil {
			t.Fatalf("record %s: %v", g.ID, err)
		}
	}
	if err := s.RecordGame(ctx, games[0], at); err != nil {
		t.Fatalf("duplicate record should be ignored: %v", err)
	}
	if err := s.RecordGame(ctx, game.SessionSnapshot{ID: "g4"}, at); err == nil {
		t.Fatal("expected error for active game")
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Played != 3 || st.Wins != 2 || st.Distribution[3] != 2 || len(st.Distribution) != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestRecordRoundAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	round := func(winner string, ranks map[string]int) room.Snapshot {
		snap := room.Snapshot{ID: "R1", Name: "fun", Status: room.StatusFinished, Target: "CRANE", FirstWinnerID: winner}
		for _, id := range []string{"a", "b", "c"} {
			snap.Players = append(snap.Players, room.PlayerView{
				ID: id, Name: "user-" + id, Rank: ranks[id], Points: room.PointsFor(ranks[id]),
				Won: id == winner, RoundsUsed: 2,
			})
		}
		return snap
	}
	if err := s.RecordRound(ctx, round("a", map[string]int{"a": 1, "b": 2, "c": 3}), at); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordRound(ctx, round("b", map[string]int{"b": 1, "c": 2, "a": 3}), at.Add(time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordRound(ctx, room.Snapshot{ID: "R2", Status: room.StatusInProgress}, at); err == nil {
		t.Fatal("expected error for unfinished room")
	}

	lb, err := s.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	// b: 7+10, a: 10+5, c: 5+7
	want := []LBRow{
		{PlayerID: "b", Username: "user-b", Points: 17, Rounds: 2, Wins: 1},
		{PlayerID: "a", Username: "user-a", Points: 15, Rounds: 2, Wins: 1},
		{PlayerID: "c", Username: "user-c", Points: 12, Rounds: 2, Wins: 0},
	}
	if len(lb) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), lb)
	}
	for i := range want {
		if lb[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, lb[i], want[i])
		}
	}

	top, _ := s.Leaderboard(ctx, 1)
	if len(top) != 1 || top[0].PlayerID != "b" {
		t.Fatalf("limit not applied: %+v", top)
	}
}
