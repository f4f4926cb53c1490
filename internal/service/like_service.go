package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/decodeit/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeService 维护社区条目的点赞
// (entryId, userEmail) 唯一；邮箱统一小写
type LikeService struct {
	db *gorm.DB
}

// ToggleResult 是切换点赞后的状态。
type ToggleResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// NewLikeService 构造 LikeService
func NewLikeService(gdb *gorm.DB) *LikeService {
	return &LikeService{db: gdb}
}

// Toggle 已点赞则取消，否则新增；并发下插入撞上唯一索引时视为取消。
func (s *LikeService) Toggle(ctx context.Context, entryID, email string) (*ToggleResult, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return nil, ErrEntryIDRequired
	}
	email = normalizeEmail(email)

	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Like
		err := tx.Where("entry_id = ? AND user_email = ?", entryID, email).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return fmt.Errorf("remove like: %w", err)
			}
			liked = false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&db.Like{EntryID: entryID, UserEmail: email})
			if res.Error != nil {
				return fmt.Errorf("add like: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// 并发插入了同一条点赞，按取消处理
				if err := tx.Unscoped().Where("entry_id = ? AND user_email = ?", entryID, email).Delete(&db.Like{}).Error; err != nil {
					return fmt.Errorf("remove duplicate like: %w", err)
				}
				liked = false
				return nil
			}
			liked = true
			return nil
		default:
			return fmt.Errorf("find like: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	count, err := s.count(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Liked: liked, Count: count}, nil
}

// Status 返回用户对每个条目是否点赞。
func (s *LikeService) Status(ctx context.Context, entryIDs []string, email string) (map[string]bool, error) {
	out := make(map[string]bool, len(entryIDs))
	ids := cleanEntryIDs(entryIDs)
	for _, id := range ids {
		out[id] = false
	}
	if len(ids) == 0 {
		return out, nil
	}

	var liked []string
	if err := s.db.WithContext(ctx).Model(&db.Like{}).
		Where("entry_id IN ? AND user_email = ?", ids, normalizeEmail(email)).
		Pluck("entry_id", &liked).Error; err != nil {
		return nil, fmt.Errorf("like status: %w", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// Counts 返回每个条目的点赞数，无需登录。
func (s *LikeService) Counts(ctx context.Context, entryIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(entryIDs))
	ids := cleanEntryIDs(entryIDs)
	for _, id := range ids {
		out[id] = 0
	}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		EntryID string
		Total   int64
	}
	if err := s.db.WithContext(ctx).Model(&db.Like{}).
		Select("entry_id, COUNT(*) AS total").
		Where("entry_id IN ?", ids).
		Group("entry_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("like counts: %w", err)
	}
	for _, r := range rows {
		out[r.EntryID] = r.Total
	}
	return out, nil
}

func (s *LikeService) count(ctx context.Context, entryID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Like{}).Where("entry_id = ?", entryID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func cleanEntryIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
