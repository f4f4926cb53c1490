package db

import (
	"time"

	"gorm.io/gorm"
)

// DailyChallenge 保存用户当天的善行谜题
// UserID + Date 唯一，保证一天只生成一次；Deed 为明文，只在服务端比对
type DailyChallenge struct {
	gorm.Model
	UserID      uint   `gorm:"not null;uniqueIndex:idx_challenge_user_date"`
	Date        string `gorm:"size:10;not null;uniqueIndex:idx_challenge_user_date"`
	Sign        string `gorm:"size:20"`
	Deed        string `gorm:"type:text;not null"`
	Shift       int
	CipherText  string `gorm:"type:text;not null"`
	CompletedAt *time.Time
}

// GameResult 记录小游戏的每日结果
// UserID + Game + PlayDate 采用唯一索引，保证幂等
type GameResult struct {
	gorm.Model
	UserID   uint      `gorm:"index;uniqueIndex:idx_game_result_unique"`
	Game     string    `gorm:"size:20;uniqueIndex:idx_game_result_unique"`
	PlayDate time.Time `gorm:"uniqueIndex:idx_game_result_unique"`
	Won      bool
	Guesses  int
	Reason   string `gorm:"size:30"`
}

// TableName 重写确保唯一索引作用到 user_id + game + play_date
func (GameResult) TableName() string {
	return "game_results"
}
