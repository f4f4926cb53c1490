package handler

import (
	"net/http"
	"testing"

	"github.com/decodeit/internal/puzzle"
	"github.com/decodeit/internal/service"
)

func TestBottleGuessLimitTrackedInSession(t *testing.T) {
	env := setupHandlerTest(t)
	player := env.client()

	w := player.do(t, http.MethodGet, "/api/puzzles/bottle/today", nil)
	expectStatus(t, w, http.StatusOK)
	var today bottleTodayResponse
	decodeJSON(t, w, &today)
	if today.Puzzle.ID != 1 || today.GuessesUsed != 0 || today.Finished || today.TargetOrder != nil {
		t.Fatalf("unexpected fresh puzzle %+v", today)
	}
	if puzzle.CheckOrder(today.InitialOrder, env.games.TodayBottle().TargetOrder) != 0 {
		t.Fatalf("initial order %v already matches a position", today.InitialOrder)
	}

	w = player.do(t, http.MethodPost, "/api/puzzles/bottle/guess", map[string][]int{"order": {0, 0, 1}})
	expectError(t, w, http.StatusBadRequest, "Order must list every bottle exactly once")

	var guess bottleGuessResponse
	for i := 1; i <= puzzle.BottleMaxGuesses; i++ {
		w = player.do(t, http.MethodPost, "/api/puzzles/bottle/guess", map[string][]int{"order": today.InitialOrder})
		expectStatus(t, w, http.StatusOK)
		decodeJSON(t, w, &guess)
		if guess.Feedback.GuessNumber != i || guess.Feedback.CorrectCount != 0 {
			t.Fatalf("guess %d: unexpected feedback %+v", i, guess.Feedback)
		}
	}
	if guess.Feedback.Outcome != puzzle.OutcomeLoss || guess.Feedback.Reason != puzzle.ReasonOutOfGuesses {
		t.Fatalf("expected loss on last guess, got %+v", guess.Feedback)
	}
	if len(guess.TargetOrder) != len(today.InitialOrder) {
		t.Fatalf("expected target revealed after loss, got %v", guess.TargetOrder)
	}

	w = player.do(t, http.MethodPost, "/api/puzzles/bottle/guess", map[string][]int{"order": today.InitialOrder})
	expectError(t, w, http.StatusConflict, service.ErrGameAlreadyOver.Message)

	w = player.do(t, http.MethodGet, "/api/puzzles/bottle/today", nil)
	decodeJSON(t, w, &today)
	if !today.Finished || today.GuessesUsed != puzzle.BottleMaxGuesses || today.TargetOrder == nil {
		t.Fatalf("expected finished state from session, got %+v", today)
	}

	// 新的浏览器会话从头开始
	w = env.client().do(t, http.MethodGet, "/api/puzzles/bottle/today", nil)
	decodeJSON(t, w, &today)
	if today.Finished || today.GuessesUsed != 0 {
		t.Fatalf("expected fresh state for new session, got %+v", today)
	}
}

func TestBottleWinRecordsStatsForSignedInUser(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")
	target := env.games.TodayBottle().TargetOrder

	w := ada.do(t, http.MethodPost, "/api/puzzles/bottle/guess", map[string][]int{"order": target})
	expectStatus(t, w, http.StatusOK)
	var guess bottleGuessResponse
	decodeJSON(t, w, &guess)
	if guess.Feedback.Outcome != puzzle.OutcomeWin || guess.Feedback.GuessNumber != 1 {
		t.Fatalf("expected first-guess win, got %+v", guess.Feedback)
	}

	w = ada.do(t, http.MethodGet, "/api/games/bottle/stats", nil)
	expectStatus(t, w, http.StatusOK)
	var stats gameStatsResponse
	decodeJSON(t, w, &stats)
	if stats.Stats.Wins != 1 || stats.Stats.TotalGames != 1 || stats.Stats.CurrentStreak != 1 || stats.Stats.SuccessPercentage != 100 {
		t.Fatalf("unexpected stats %+v", stats.Stats)
	}

	w = ada.do(t, http.MethodGet, "/api/games/numeric/stats", nil)
	decodeJSON(t, w, &stats)
	if stats.Stats.TotalGames != 0 {
		t.Fatalf("numeric stats should be empty, got %+v", stats.Stats)
	}

	w = ada.do(t, http.MethodGet, "/api/games/chess/stats", nil)
	expectError(t, w, http.StatusNotFound, service.ErrUnknownGame.Message)

	w = env.client().do(t, http.MethodGet, "/api/games/bottle/stats", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestNumericGuessFlow(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")

	w := ada.do(t, http.MethodGet, "/api/puzzles/numeric/today", nil)
	expectStatus(t, w, http.StatusOK)
	var today numericTodayResponse
	decodeJSON(t, w, &today)
	if today.Puzzle.MaxGuesses != puzzle.NumericMaxGuesses || today.Reveal != nil {
		t.Fatalf("unexpected numeric puzzle %+v", today)
	}

	w = ada.do(t, http.MethodPost, "/api/puzzles/numeric/guess", `{}`)
	expectError(t, w, http.StatusBadRequest, service.ErrInvalidGuess.Message)

	var guess numericGuessResponse
	for i := 1; i <= puzzle.NumericMaxGuesses; i++ {
		w = ada.do(t, http.MethodPost, "/api/puzzles/numeric/guess", map[string]int{"guess": 100000})
		expectStatus(t, w, http.StatusOK)
		decodeJSON(t, w, &guess)
		if guess.Feedback.Direction != puzzle.DirectionLower || guess.Feedback.Proximity != puzzle.ProximityVeryFar {
			t.Fatalf("guess %d: unexpected feedback %+v", i, guess.Feedback)
		}
	}
	if guess.Feedback.Outcome != puzzle.OutcomeLoss || guess.Feedback.Reason != puzzle.ReasonOutOfGuesses {
		t.Fatalf("expected out-of-guesses loss, got %+v", guess.Feedback)
	}
	if guess.Reveal == nil || guess.Reveal.Target != env.games.TodayNumeric().Target {
		t.Fatalf("expected reveal after loss, got %+v", guess.Reveal)
	}

	w = ada.do(t, http.MethodPost, "/api/puzzles/numeric/guess", map[string]int{"guess": 1})
	expectError(t, w, http.StatusConflict, service.ErrGameAlreadyOver.Message)

	w = ada.do(t, http.MethodGet, "/api/games/numeric/stats", nil)
	var stats gameStatsResponse
	decodeJSON(t, w, &stats)
	if stats.Stats.Losses != 1 || stats.Stats.Wins != 0 {
		t.Fatalf("unexpected numeric stats %+v", stats.Stats)
	}
}

func TestNextGuess(t *testing.T) {
	if n, err := nextGuess(playState{Guesses: 2}, 5); err != nil || n != 3 {
		t.Fatalf("expected third guess, got %d %v", n, err)
	}
	if _, err := nextGuess(playState{Guesses: 5}, 5); err != service.ErrOutOfGuesses {
		t.Fatalf("expected ErrOutOfGuesses, got %v", err)
	}
	if _, err := nextGuess(playState{Guesses: 1, Over: true}, 5); err != service.ErrGameAlreadyOver {
		t.Fatalf("expected ErrGameAlreadyOver, got %v", err)
	}
}
