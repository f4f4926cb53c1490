package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/decodeit/internal/db"
	"github.com/decodeit/internal/puzzle"
)

func TestGameServiceTodayPuzzlesUseDailySeed(t *testing.T) {
	games := NewGameService(nil, fixedClock("2024-01-01"))
	if games.Seed() != 1 {
		t.Fatalf("expected seed 1 on Jan 1st, got %d", games.Seed())
	}

	bottle := games.TodayBottle()
	want := puzzle.GenerateBottlePuzzle(1)
	for i := range want.TargetOrder {
		if bottle.TargetOrder[i] != want.TargetOrder[i] {
			t.Fatalf("unexpected target order %v", bottle.TargetOrder)
		}
	}
	if games.TodayNumeric().Target != 201 {
		t.Fatalf("unexpected numeric target %d", games.TodayNumeric().Target)
	}

	order := games.InitialBottleOrder(bottle)
	for i, v := range order {
		if v == bottle.TargetOrder[i] {
			t.Fatalf("initial order %v shares position %d with target", order, i)
		}
	}
}

func TestGameServiceRecordIsIdempotentPerDay(t *testing.T) {
	gdb := setupServiceTestDB(t)
	games := NewGameService(gdb, fixedClock("2024-05-10"))
	ctx := context.Background()

	if err := games.Record(ctx, 1, GameResultInput{Game: GameBottle, Won: true, Guesses: 3}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := games.Record(ctx, 1, GameResultInput{Game: GameBottle, Won: false, Guesses: 5}); err != nil {
		t.Fatalf("duplicate Record returned error: %v", err)
	}
	if err := games.Record(ctx, 1, GameResultInput{Game: "chess"}); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}

	var rows []db.GameResult
	gdb.Find(&rows)
	if len(rows) != 1 || !rows[0].Won {
		t.Fatalf("expected the first result to stick, got %+v", rows)
	}
}

func TestGameServiceStats(t *testing.T) {
	gdb := setupServiceTestDB(t)
	games := NewGameService(gdb, fixedClock("2024-05-10"))
	ctx := context.Background()

	day := func(s string) time.Time {
		ts, _ := time.Parse(DateLayout, s)
		return ts
	}
	results := []db.GameResult{
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-01"), Won: true},
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-02"), Won: true},
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-03"), Won: true},
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-04"), Won: false},
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-08"), Won: true},
		{UserID: 1, Game: GameNumeric, PlayDate: day("2024-05-09"), Won: true},
		{UserID: 1, Game: GameBottle, PlayDate: day("2024-05-09"), Won: false},
	}
	if err := gdb.Create(&results).Error; err != nil {
		t.Fatalf("seed results: %v", err)
	}

	stats, err := games.Stats(ctx, 1, GameNumeric)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	want := GameStats{Game: GameNumeric, Wins: 5, Losses: 1, TotalGames: 6, CurrentStreak: 2, LongestStreak: 3, SuccessPercentage: 83}
	if *stats != want {
		t.Fatalf("unexpected stats %+v, want %+v", *stats, want)
	}

	empty, err := games.Stats(ctx, 2, GameBottle)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if empty.TotalGames != 0 || empty.SuccessPercentage != 0 {
		t.Fatalf("unexpected empty stats %+v", empty)
	}

	if _, err := games.Stats(ctx, 1, "chess"); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestCalculateWinStreaksResetsAfterGap(t *testing.T) {
	day := func(s string) time.Time {
		ts, _ := time.Parse(DateLayout, s)
		return ts
	}
	results := []db.GameResult{
		{PlayDate: day("2024-05-01"), Won: true},
		{PlayDate: day("2024-05-02"), Won: true},
	}
	current, longest := calculateWinStreaks(results, day("2024-05-05"))
	if current != 0 || longest != 2 {
		t.Fatalf("expected current 0 longest 2, got %d %d", current, longest)
	}
	current, _ = calculateWinStreaks(results, day("2024-05-03"))
	if current != 2 {
		t.Fatalf("expected current streak to survive until tomorrow, got %d", current)
	}
}
