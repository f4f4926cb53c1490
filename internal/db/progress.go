package db

import "gorm.io/gorm"

// UserProgress 记录积分、连续天数与最近一次完成善行的日期（YYYY-MM-DD）
// Version 每次写入递增，用于乐观并发控制
type UserProgress struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex;not null"`
	Points       int    `gorm:"not null;default:0"`
	Streak       int    `gorm:"not null;default:0"`
	LastDeedDate string `gorm:"size:10"`
	Version      int64  `gorm:"not null;default:0"`
}

// Deed 是一条已完成的善行记录
// 同一用户同一天只保留一条，PublicID 用于对外引用
type Deed struct {
	gorm.Model
	PublicID     string `gorm:"size:36;uniqueIndex;not null"`
	UserID       uint   `gorm:"not null;index;uniqueIndex:idx_deed_user_date"`
	Date         string `gorm:"size:10;not null;uniqueIndex:idx_deed_user_date"`
	Text         string `gorm:"type:text;not null"`
	SolvePoints  int
	UploadPoints int
	TotalPoints  int
	Streak       int
	Image        string `gorm:"type:text"`
}

// Like 记录某个用户对社区条目的点赞，EntryID 形如 <email>_<date>
type Like struct {
	gorm.Model
	EntryID   string `gorm:"size:400;not null;index;uniqueIndex:idx_like_entry_user"`
	UserEmail string `gorm:"size:320;not null;uniqueIndex:idx_like_entry_user"`
}
