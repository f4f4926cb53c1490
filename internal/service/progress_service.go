package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/decodeit/internal/db"
	"gorm.io/gorm"
)

const completeDeedAttempts = 3

// ProgressService 负责用户进度、排行榜与社区动态
type ProgressService struct {
	db    *gorm.DB
	store ProgressStore
	now   func() time.Time
}

// UserDataPatch 中为 nil 的字段保持不变；Version 为 nil 时不做版本校验。
type UserDataPatch struct {
	Points       *int
	Streak       *int
	LastDeedDate *string
	PastDeeds    *[]DeedEntry
	Version      *int64
}

// DeedCompletion 描述一次完成善行的输入。
type DeedCompletion struct {
	Deed  string
	Image string
}

// LeaderboardEntry 是排行榜中的一行。
type LeaderboardEntry struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Streak int    `json:"streak"`
}

// CommunityEntry 是社区动态中带图片的一条善行。
type CommunityEntry struct {
	EntryID      string `json:"entryId"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Deed         string `json:"deed"`
	Date         string `json:"date"`
	Image        string `json:"image"`
	SolvePoints  int    `json:"solvePoints"`
	UploadPoints int    `json:"uploadPoints"`
	TotalPoints  int    `json:"totalPoints"`
	Streak       int    `json:"streak"`
}

// NewProgressService 构造 ProgressService，now 为空时使用 time.Now。
func NewProgressService(gdb *gorm.DB, store ProgressStore, now func() time.Time) *ProgressService {
	if now == nil {
		now = time.Now
	}
	return &ProgressService{db: gdb, store: store, now: now}
}

// Get 返回用户进度，不存在时创建。
func (s *ProgressService) Get(ctx context.Context, userID uint) (*ProgressSnapshot, error) {
	return s.store.Load(ctx, userID)
}

// Update 只修改 patch 中出现的字段。
func (s *ProgressService) Update(ctx context.Context, userID uint, patch UserDataPatch) (*ProgressSnapshot, error) {
	current, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := current.clone()
	next.UserID = userID
	if patch.Points != nil {
		if *patch.Points < 0 {
			return nil, newError(KindValidation, "points cannot be negative")
		}
		next.Points = *patch.Points
	}
	if patch.Streak != nil {
		if *patch.Streak < 0 {
			return nil, newError(KindValidation, "streak cannot be negative")
		}
		next.Streak = *patch.Streak
	}
	if patch.LastDeedDate != nil {
		date := strings.TrimSpace(*patch.LastDeedDate)
		if date != "" {
			if _, err := time.Parse(DateLayout, date); err != nil {
				return nil, newError(KindValidation, "lastDeedDate must be YYYY-MM-DD")
			}
		}
		next.LastDeedDate = date
	}
	if patch.PastDeeds != nil {
		for _, d := range *patch.PastDeeds {
			if _, err := time.Parse(DateLayout, d.Date); err != nil {
				return nil, newError(KindValidation, "pastDeeds entries need a YYYY-MM-DD date")
			}
		}
		next.PastDeeds = *patch.PastDeeds
	}

	expected := AnyVersion
	if patch.Version != nil {
		expected = *patch.Version
	}
	return s.store.Save(ctx, next, expected)
}

// CompleteDeed 计算连续天数与积分，把善行插到历史最前并保存。
// 使用读到的版本号做条件写入，冲突时重新读取并再次检查今天是否已完成。
func (s *ProgressService) CompleteDeed(ctx context.Context, userID uint, in DeedCompletion) (*ProgressSnapshot, *DeedEntry, error) {
	today := s.now()

	for attempt := 0; attempt < completeDeedAttempts; attempt++ {
		current, err := s.store.Load(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		if HasCompletedToday(current.LastDeedDate, current.PastDeeds, today) {
			return nil, nil, ErrAlreadyCompleted
		}

		streak := CalculateStreak(current.LastDeedDate, current.Streak, today)
		solve := CalculateSolvePoints(streak)
		upload := 0
		if strings.TrimSpace(in.Image) != "" {
			upload = CalculateUploadPoints(streak)
		}
		entry := NewDeedEntry(in.Deed, solve, upload, streak, strings.TrimSpace(in.Image), today)

		next := current.clone()
		next.UserID = userID
		next.Points += entry.TotalPoints
		next.Streak = streak
		next.LastDeedDate = entry.Date
		next.PastDeeds = PrependDeed(current.PastDeeds, entry)

		saved, err := s.store.Save(ctx, next, current.Version)
		if errors.Is(err, ErrProgressConflict) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return saved, &entry, nil
	}
	return nil, nil, ErrProgressConflict
}

// AttachImage 为今天已完成的善行补传图片，并补发上传积分。
func (s *ProgressService) AttachImage(ctx context.Context, userID uint, image string) (*ProgressSnapshot, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, ErrImageRequired
	}
	today := FormatDate(s.now())

	for attempt := 0; attempt < completeDeedAttempts; attempt++ {
		current, err := s.store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		next := current.clone()
		next.UserID = userID

		idx := -1
		for i, d := range next.PastDeeds {
			if d.Date == today {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrChallengeNotStarted
		}

		d := &next.PastDeeds[idx]
		if d.UploadPoints == 0 {
			d.UploadPoints = CalculateUploadPoints(d.Streak)
			d.TotalPoints = d.SolvePoints + d.UploadPoints
			next.Points += d.UploadPoints
		}
		d.Image = image

		saved, err := s.store.Save(ctx, next, current.Version)
		if errors.Is(err, ErrProgressConflict) {
			continue
		}
		return saved, err
	}
	return nil, ErrProgressConflict
}

// Leaderboard 按名字（大小写不敏感）去重保留最高分，按积分倒序。
func (s *ProgressService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	type row struct {
		Email    string
		Username string
		Points   int
		Streak   int
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Table("users").
		Select("users.email, users.username, COALESCE(user_progresses.points, 0) AS points, COALESCE(user_progresses.streak, 0) AS streak").
		Joins("LEFT JOIN user_progresses ON user_progresses.user_id = users.id AND user_progresses.deleted_at IS NULL").
		Where("users.deleted_at IS NULL").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	best := make(map[string]LeaderboardEntry, len(rows))
	for _, r := range rows {
		u := db.User{Email: r.Email, Username: r.Username}
		entry := LeaderboardEntry{Email: r.Email, Name: u.DisplayName(), Points: r.Points, Streak: r.Streak}
		key := strings.ToLower(entry.Name)
		if existing, ok := best[key]; !ok || entry.Points > existing.Points {
			best[key] = entry
		}
	}

	out := make([]LeaderboardEntry, 0, len(best))
	for _, entry := range best {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Community 返回所有带图片的善行，新的在前。
func (s *ProgressService) Community(ctx context.Context) ([]CommunityEntry, error) {
	type row struct {
		Email        string
		Username     string
		Date         string
		Text         string
		Image        string
		SolvePoints  int
		UploadPoints int
		TotalPoints  int
		Streak       int
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Table("deeds").
		Select("users.email, users.username, deeds.date, deeds.text, deeds.image, deeds.solve_points, deeds.upload_points, deeds.total_points, deeds.streak").
		Joins("JOIN users ON users.id = deeds.user_id AND users.deleted_at IS NULL").
		Where("deeds.deleted_at IS NULL AND deeds.image <> ''").
		Order("deeds.date DESC, deeds.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load community: %w", err)
	}

	out := make([]CommunityEntry, 0, len(rows))
	for _, r := range rows {
		u := db.User{Email: r.Email, Username: r.Username}
		out = append(out, CommunityEntry{
			EntryID:      EntryID(r.Email, r.Date),
			Email:        r.Email,
			Username:     u.DisplayName(),
			Deed:         r.Text,
			Date:         r.Date,
			Image:        r.Image,
			SolvePoints:  r.SolvePoints,
			UploadPoints: r.UploadPoints,
			TotalPoints:  r.TotalPoints,
			Streak:       r.Streak,
		})
	}
	return out, nil
}

// EntryID 生成社区条目 ID：<email>_<date>。
func EntryID(email, date string) string {
	return email + "_" + date
}
