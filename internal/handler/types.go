package handler

import (
	"encoding/json"

	"github.com/decodeit/internal/puzzle"
	"github.com/decodeit/internal/service"
)

// ErrorResponse 是所有失败响应的信封。
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

// MessageResponse 只带一条提示。
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse 是健康检查结果。
type HealthResponse struct {
	Status string `json:"status"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Birthday string `json:"birthday"`
	Username string `json:"username,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	// Email 兼容只传邮箱的旧客户端
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token"`
	User    service.PublicUser `json:"user"`
}

type profileRequest struct {
	Username *string `json:"username,omitempty"`
	Theme    *string `json:"theme,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
}

type profileResponse struct {
	Success bool               `json:"success"`
	User    service.PublicUser `json:"user"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userDataRequest struct {
	Points       *int                 `json:"points,omitempty"`
	Streak       *int                 `json:"streak,omitempty"`
	LastDeedDate *string              `json:"lastDeedDate,omitempty"`
	PastDeeds    *[]service.DeedEntry `json:"pastDeeds,omitempty"`
	Version      *int64               `json:"version,omitempty"`
}

type userDataResponse struct {
	Success bool                      `json:"success"`
	Data    *service.ProgressSnapshot `json:"data"`
}

type leaderboardResponse struct {
	Success     bool                       `json:"success"`
	Leaderboard []service.LeaderboardEntry `json:"leaderboard"`
}

type communityResponse struct {
	Success bool                     `json:"success"`
	Entries []service.CommunityEntry `json:"entries"`
}

type toggleLikeRequest struct {
	EntryID string `json:"entryId"`
}

type toggleLikeResponse struct {
	Success bool  `json:"success"`
	Liked   bool  `json:"liked"`
	Count   int64 `json:"count"`
}

// entryIDsRequest 保留原始 JSON，以便区分缺失、非数组与合法数组。
type entryIDsRequest struct {
	EntryIDs json.RawMessage `json:"entryIds"`
}

// entryIDsDoc 仅用于生成接口文档。
type entryIDsDoc struct {
	EntryIDs []string `json:"entryIds"`
}

type likeStatusResponse struct {
	Success bool            `json:"success"`
	Status  map[string]bool `json:"status"`
}

type likeCountsResponse struct {
	Success bool             `json:"success"`
	Counts  map[string]int64 `json:"counts"`
}

type zodiacResponse struct {
	Success bool                    `json:"success"`
	Signs   []service.ZodiacInsight `json:"signs"`
}

type challengeResponse struct {
	Success   bool                   `json:"success"`
	Challenge *service.ChallengeView `json:"challenge"`
}

type solveRequest struct {
	Answer string `json:"answer"`
	Image  string `json:"image,omitempty"`
}

type solveResponse struct {
	Success bool `json:"success"`
	service.SolveResult
}

type uploadResponse struct {
	Success  bool                      `json:"success"`
	URL      string                    `json:"url"`
	Format   string                    `json:"format"`
	Width    int                       `json:"width"`
	Height   int                       `json:"height"`
	Progress *service.ProgressSnapshot `json:"progress,omitempty"`
}

type bottleTodayResponse struct {
	Success      bool                `json:"success"`
	Puzzle       puzzle.BottlePuzzle `json:"puzzle"`
	InitialOrder []int               `json:"initialOrder"`
	GuessesUsed  int                 `json:"guessesUsed"`
	Finished     bool                `json:"finished"`
	TargetOrder  []int               `json:"targetOrder,omitempty"`
}

type bottleGuessRequest struct {
	Order []int `json:"order"`
}

type bottleGuessResponse struct {
	Success     bool                  `json:"success"`
	Feedback    puzzle.BottleFeedback `json:"feedback"`
	TargetOrder []int                 `json:"targetOrder,omitempty"`
}

type numericTodayResponse struct {
	Success     bool                       `json:"success"`
	Puzzle      puzzle.PublicNumericPuzzle `json:"puzzle"`
	GuessesUsed int                        `json:"guessesUsed"`
	Finished    bool                       `json:"finished"`
	Reveal      *puzzle.Reveal             `json:"reveal,omitempty"`
}

type numericGuessRequest struct {
	Guess *int `json:"guess"`
}

type numericGuessResponse struct {
	Success  bool                 `json:"success"`
	Feedback puzzle.GuessFeedback `json:"feedback"`
	Reveal   *puzzle.Reveal       `json:"reveal,omitempty"`
}

type gameStatsResponse struct {
	Success bool               `json:"success"`
	Stats   *service.GameStats `json:"stats"`
}
