package service

import (
	"time"
)

const (
	// DateLayout 是所有日期字段使用的格式。
	DateLayout = "2006-01-02"
	// MaxPastDeeds 历史善行列表的上限。
	MaxPastDeeds = 100

	basePoints = 5
)

// DeedEntry 是对外展示的一条善行。
type DeedEntry struct {
	Date         string `json:"date"`
	Deed         string `json:"deed"`
	SolvePoints  int    `json:"solvePoints"`
	UploadPoints int    `json:"uploadPoints"`
	TotalPoints  int    `json:"totalPoints"`
	Streak       int    `json:"streak"`
	Image        string `json:"image,omitempty"`
}

// FormatDate 将时间格式化为 YYYY-MM-DD。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CalculateStreak 根据上次完成日期计算新的连续天数：
// 无记录为 1；相隔 1 天加一；超过 1 天重置为 1；同一天保持不变。
func CalculateStreak(lastDeedDate string, current int, today time.Time) int {
	if lastDeedDate == "" {
		return 1
	}
	last, err := time.ParseInLocation(DateLayout, lastDeedDate, today.Location())
	if err != nil {
		return 1
	}

	diff := daysBetween(last, today)
	switch {
	case diff == 1:
		return current + 1
	case diff > 1:
		return 1
	default:
		return current
	}
}

// CalculateSolvePoints 解题积分：基础 5 分加连续天数。
func CalculateSolvePoints(streak int) int {
	return basePoints + streak
}

// CalculateUploadPoints 上传图片积分：基础 5 分加连续天数。
func CalculateUploadPoints(streak int) int {
	return basePoints + streak
}

// HasCompletedToday 要求最近完成日期为今天且历史中有今天的记录。
func HasCompletedToday(lastDeedDate string, deeds []DeedEntry, today time.Time) bool {
	date := FormatDate(today)
	if lastDeedDate != date {
		return false
	}
	for _, d := range deeds {
		if d.Date == date {
			return true
		}
	}
	return false
}

// NewDeedEntry 构造一条善行，totalPoints = solve + upload。
func NewDeedEntry(deed string, solvePoints, uploadPoints, streak int, image string, today time.Time) DeedEntry {
	return DeedEntry{
		Date:         FormatDate(today),
		Deed:         deed,
		SolvePoints:  solvePoints,
		UploadPoints: uploadPoints,
		TotalPoints:  solvePoints + uploadPoints,
		Streak:       streak,
		Image:        image,
	}
}

// PrependDeed 新记录放在最前，并截断到 MaxPastDeeds。
func PrependDeed(deeds []DeedEntry, d DeedEntry) []DeedEntry {
	out := make([]DeedEntry, 0, min(len(deeds)+1, MaxPastDeeds))
	out = append(out, d)
	for _, existing := range deeds {
		if len(out) == MaxPastDeeds {
			break
		}
		out = append(out, existing)
	}
	return out
}

// daysBetween 按日历日计算差值，避免夏令时导致的 23/25 小时。
func daysBetween(from, to time.Time) int {
	return int(calendarDay(to).Sub(calendarDay(from)).Hours() / 24)
}

// calendarDay 取 t 所在时区的日期，以 UTC 零点表示，便于跨时区比较与存储。
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
