package handler

import (
	"errors"
	"log"

	"github.com/decodeit/internal/puzzle"
	"github.com/decodeit/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// playState 是某个小游戏当天的进度，只保存在签名 cookie 会话里。
type playState struct {
	Guesses int
	Over    bool
}

func playKey(game, field string) string {
	return "play." + game + "." + field
}

// loadPlayState 读取当天进度，种子变化（跨天）时视为新的一局。
func loadPlayState(s sessions.Session, game string, seed int64) playState {
	stored, ok := s.Get(playKey(game, "seed")).(int64)
	if !ok || stored != seed {
		return playState{}
	}
	guesses, _ := s.Get(playKey(game, "guesses")).(int)
	over, _ := s.Get(playKey(game, "over")).(bool)
	return playState{Guesses: guesses, Over: over}
}

func savePlayState(s sessions.Session, game string, seed int64, st playState) error {
	s.Set(playKey(game, "seed"), seed)
	s.Set(playKey(game, "guesses"), st.Guesses)
	s.Set(playKey(game, "over"), st.Over)
	return s.Save()
}

// nextGuess 检查是否还能提交，返回本次的序号（从 1 开始）。
func nextGuess(st playState, max int) (int, error) {
	if st.Over {
		return 0, service.ErrGameAlreadyOver
	}
	if st.Guesses >= max {
		return 0, service.ErrOutOfGuesses
	}
	return st.Guesses + 1, nil
}

// recordResult 登录用户的终局结果写入统计，失败只记日志。
func (a *API) recordResult(c *gin.Context, in service.GameResultInput) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if err := a.games.Record(c.Request.Context(), user.ID, in); err != nil {
		log.Printf("[GAME] record %s result for user %d: %v", in.Game, user.ID, err)
	}
}

// BottleToday 返回今天的瓶子谜题
func (a *API) BottleToday(c *gin.Context) {
	p := a.games.TodayBottle()
	st := loadPlayState(sessions.Default(c), service.GameBottle, a.games.Seed())

	resp := bottleTodayResponse{
		Success:      true,
		Puzzle:       p,
		InitialOrder: a.games.InitialBottleOrder(p),
		GuessesUsed:  st.Guesses,
		Finished:     st.Over,
	}
	if st.Over {
		resp.TargetOrder = p.TargetOrder
	}
	respondOK(c, resp)
}

// BottleGuess 提交一次瓶子排列
func (a *API) BottleGuess(c *gin.Context) {
	var req bottleGuessRequest
	if !bindJSON(c, &req) {
		return
	}

	seed := a.games.Seed()
	p := a.games.TodayBottle()
	session := sessions.Default(c)
	st := loadPlayState(session, service.GameBottle, seed)

	n, err := nextGuess(st, p.MaxGuesses)
	if err != nil {
		respondError(c, err)
		return
	}

	fb, err := puzzle.EvaluateBottleGuess(p, req.Order, n)
	if errors.Is(err, puzzle.ErrInvalidOrder) {
		respondError(c, &service.Error{Kind: service.KindValidation, Message: "Order must list every bottle exactly once"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	st.Guesses = n
	st.Over = fb.Outcome != puzzle.OutcomeContinue
	if err := savePlayState(session, service.GameBottle, seed, st); err != nil {
		respondError(c, err)
		return
	}

	resp := bottleGuessResponse{Success: true, Feedback: fb}
	if st.Over {
		resp.TargetOrder = p.TargetOrder
		a.recordResult(c, service.GameResultInput{Game: service.GameBottle, Won: fb.Outcome == puzzle.OutcomeWin, Guesses: n, Reason: fb.Reason})
	}
	respondOK(c, resp)
}

// NumericToday 返回今天的数字谜题（不含答案）
func (a *API) NumericToday(c *gin.Context) {
	p := a.games.TodayNumeric()
	st := loadPlayState(sessions.Default(c), service.GameNumeric, a.games.Seed())

	resp := numericTodayResponse{
		Success:     true,
		Puzzle:      p.Public(),
		GuessesUsed: st.Guesses,
		Finished:    st.Over,
	}
	if st.Over {
		reveal := p.Reveal()
		resp.Reveal = &reveal
	}
	respondOK(c, resp)
}

// NumericGuess 提交一次数字猜测
func (a *API) NumericGuess(c *gin.Context) {
	var req numericGuessRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Guess == nil {
		respondError(c, service.ErrInvalidGuess)
		return
	}

	seed := a.games.Seed()
	p := a.games.TodayNumeric()
	session := sessions.Default(c)
	st := loadPlayState(session, service.GameNumeric, seed)

	n, err := nextGuess(st, p.MaxGuesses)
	if err != nil {
		respondError(c, err)
		return
	}

	fb := puzzle.EvaluateGuess(p, *req.Guess, n)
	st.Guesses = n
	st.Over = fb.Outcome != puzzle.OutcomeContinue
	if err := savePlayState(session, service.GameNumeric, seed, st); err != nil {
		respondError(c, err)
		return
	}

	resp := numericGuessResponse{Success: true, Feedback: fb}
	if st.Over {
		reveal := p.Reveal()
		resp.Reveal = &reveal
		a.recordResult(c, service.GameResultInput{Game: service.GameNumeric, Won: fb.Outcome == puzzle.OutcomeWin, Guesses: n, Reason: fb.Reason})
	}
	respondOK(c, resp)
}

// GameStats 返回当前用户某个小游戏的统计
func (a *API) GameStats(c *gin.Context) {
	stats, err := a.games.Stats(c.Request.Context(), currentUser(c).ID, c.Param("game"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gameStatsResponse{Success: true, Stats: stats})
}
