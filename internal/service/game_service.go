package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/decodeit/internal/db"
	"github.com/decodeit/internal/puzzle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 小游戏标识
const (
	GameBottle  = "bottle"
	GameNumeric = "numeric"
)

// GameService 提供每日谜题并记录输赢统计
// 同一用户同一游戏每天只记录第一次结果
type GameService struct {
	db  *gorm.DB
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// GameStats 是某个游戏的累计统计。
type GameStats struct {
	Game              string `json:"game"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	TotalGames        int    `json:"totalGames"`
	CurrentStreak     int    `json:"currentStreak"`
	LongestStreak     int    `json:"longestStreak"`
	SuccessPercentage int    `json:"successPercentage"`
}

// GameResultInput 描述一局结束时的结果。
type GameResultInput struct {
	Game    string
	Won     bool
	Guesses int
	Reason  string
}

// NewGameService 构造 GameService，now 为空时使用 time.Now。
func NewGameService(gdb *gorm.DB, now func() time.Time) *GameService {
	if now == nil {
		now = time.Now
	}
	return &GameService{
		db:  gdb,
		now: now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ValidGame 判断游戏标识是否受支持。
func ValidGame(game string) bool {
	return game == GameBottle || game == GameNumeric
}

// Seed 返回今天的谜题种子。
func (s *GameService) Seed() int64 {
	return puzzle.DailySeed(s.now())
}

// TodayBottle 返回今天的瓶子谜题。
func (s *GameService) TodayBottle() puzzle.BottlePuzzle {
	return puzzle.GenerateBottlePuzzle(s.Seed())
}

// TodayNumeric 返回今天的数字谜题。
func (s *GameService) TodayNumeric() puzzle.NumericPuzzle {
	return puzzle.GenerateNumericPuzzle(s.Seed())
}

// InitialBottleOrder 为瓶子谜题生成一个没有位置重合的起始顺序。
func (s *GameService) InitialBottleOrder(p puzzle.BottlePuzzle) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return puzzle.InitialOrder(p, s.rnd)
}

// Record 写入当天结果，重复写入被忽略。
func (s *GameService) Record(ctx context.Context, userID uint, in GameResultInput) error {
	if !ValidGame(in.Game) {
		return ErrUnknownGame
	}

	record := db.GameResult{
		UserID:   userID,
		Game:     in.Game,
		PlayDate: calendarDay(s.now()),
		Won:      in.Won,
		Guesses:  in.Guesses,
		Reason:   in.Reason,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game"}, {Name: "play_date"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("record game result: %w", err)
	}
	return nil
}

// Stats 汇总胜负与连胜。
func (s *GameService) Stats(ctx context.Context, userID uint, game string) (*GameStats, error) {
	if !ValidGame(game) {
		return nil, ErrUnknownGame
	}

	var results []db.GameResult
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND game = ?", userID, game).
		Order("play_date ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("load game results: %w", err)
	}

	stats := &GameStats{Game: game, TotalGames: len(results)}
	for _, r := range results {
		if r.Won {
			stats.Wins++
		} else {
			stats.Losses++
		}
	}
	if stats.TotalGames > 0 {
		stats.SuccessPercentage = int(math.Round(float64(stats.Wins) * 100 / float64(stats.TotalGames)))
	}
	stats.CurrentStreak, stats.LongestStreak = calculateWinStreaks(results, calendarDay(s.now()))
	return stats, nil
}

// calculateWinStreaks 连胜要求相邻两天都赢；输或间隔超过一天都会中断。
// 最近一次结果早于昨天时当前连胜归零。
func calculateWinStreaks(results []db.GameResult, today time.Time) (current, longest int) {
	var lastWin time.Time
	for _, r := range results {
		if !r.Won {
			current = 0
			continue
		}
		if current > 0 && daysBetween(lastWin, r.PlayDate) == 1 {
			current++
		} else {
			current = 1
		}
		lastWin = r.PlayDate
		if current > longest {
			longest = current
		}
	}

	if len(results) > 0 && daysBetween(results[len(results)-1].PlayDate, today) > 1 {
		current = 0
	}
	return current, longest
}
