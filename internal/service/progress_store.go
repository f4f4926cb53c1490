package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/decodeit/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnyVersion 表示写入时不校验版本（后写覆盖）。
const AnyVersion int64 = -1

// ProgressSnapshot 是一名用户的完整进度。
type ProgressSnapshot struct {
	UserID       uint        `json:"-"`
	Points       int         `json:"points"`
	Streak       int         `json:"streak"`
	LastDeedDate string      `json:"lastDeedDate"`
	PastDeeds    []DeedEntry `json:"pastDeeds"`
	Version      int64       `json:"version"`
	// Stale 表示主存储不可用，数据来自缓存
	Stale bool `json:"stale,omitempty"`
	// Pending 表示写入暂存在缓存中，尚未落到主存储
	Pending bool `json:"pending,omitempty"`
}

func (p ProgressSnapshot) clone() ProgressSnapshot {
	out := p
	out.PastDeeds = append([]DeedEntry(nil), p.PastDeeds...)
	return out
}

// ProgressStore 读写单个用户的进度。Save 在 expectedVersion 不匹配时返回 ErrProgressConflict。
type ProgressStore interface {
	Load(ctx context.Context, userID uint) (*ProgressSnapshot, error)
	Save(ctx context.Context, snap ProgressSnapshot, expectedVersion int64) (*ProgressSnapshot, error)
}

// GormProgressStore 是基于 gorm 的主存储。
type GormProgressStore struct {
	db *gorm.DB
}

// NewGormProgressStore 构造主存储
func NewGormProgressStore(gdb *gorm.DB) *GormProgressStore {
	return &GormProgressStore{db: gdb}
}

// Load 读取进度，不存在时惰性创建。
func (s *GormProgressStore) Load(ctx context.Context, userID uint) (*ProgressSnapshot, error) {
	tx := s.db.WithContext(ctx)

	var row db.UserProgress
	if err := tx.Where(db.UserProgress{UserID: userID}).FirstOrCreate(&row).Error; err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	var deeds []db.Deed
	if err := tx.Where("user_id = ?", userID).Order("date DESC").Limit(MaxPastDeeds).Find(&deeds).Error; err != nil {
		return nil, fmt.Errorf("load deeds: %w", err)
	}

	snap := &ProgressSnapshot{
		UserID:       userID,
		Points:       row.Points,
		Streak:       row.Streak,
		LastDeedDate: row.LastDeedDate,
		Version:      row.Version,
		PastDeeds:    make([]DeedEntry, 0, len(deeds)),
	}
	for _, d := range deeds {
		snap.PastDeeds = append(snap.PastDeeds, deedEntryFromModel(d))
	}
	return snap, nil
}

// Save 以条件更新写入进度并替换善行列表，版本号加一。
func (s *GormProgressStore) Save(ctx context.Context, snap ProgressSnapshot, expectedVersion int64) (*ProgressSnapshot, error) {
	deeds := normalizeDeeds(snap.PastDeeds)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row db.UserProgress
		if err := tx.Where(db.UserProgress{UserID: snap.UserID}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		query := tx.Model(&db.UserProgress{}).Where("user_id = ?", snap.UserID)
		if expectedVersion != AnyVersion {
			query = query.Where("version = ?", expectedVersion)
		}
		res := query.Updates(map[string]interface{}{
			"points":         snap.Points,
			"streak":         snap.Streak,
			"last_deed_date": snap.LastDeedDate,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("update progress: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProgressConflict
		}

		return replaceDeeds(tx, snap.UserID, deeds)
	})
	if err != nil {
		return nil, err
	}

	return s.Load(ctx, snap.UserID)
}

// replaceDeeds 用新列表覆盖用户的善行，同一天的记录沿用原 PublicID。
func replaceDeeds(tx *gorm.DB, userID uint, deeds []DeedEntry) error {
	var existing []db.Deed
	if err := tx.Unscoped().Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return fmt.Errorf("load deeds: %w", err)
	}
	publicIDs := make(map[string]string, len(existing))
	for _, d := range existing {
		publicIDs[d.Date] = d.PublicID
	}

	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&db.Deed{}).Error; err != nil {
		return fmt.Errorf("clear deeds: %w", err)
	}
	if len(deeds) == 0 {
		return nil
	}

	rows := make([]db.Deed, 0, len(deeds))
	for _, d := range deeds {
		publicID := publicIDs[d.Date]
		if publicID == "" {
			publicID = uuid.NewString()
		}
		rows = append(rows, db.Deed{
			PublicID:     publicID,
			UserID:       userID,
			Date:         d.Date,
			Text:         d.Deed,
			SolvePoints:  d.SolvePoints,
			UploadPoints: d.UploadPoints,
			TotalPoints:  d.TotalPoints,
			Streak:       d.Streak,
			Image:        d.Image,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert deeds: %w", err)
	}
	return nil
}

// normalizeDeeds 按日期倒序排列、同一天只保留第一条，并截断到上限。
func normalizeDeeds(deeds []DeedEntry) []DeedEntry {
	out := make([]DeedEntry, 0, len(deeds))
	seen := make(map[string]bool, len(deeds))
	for _, d := range deeds {
		if d.Date == "" || seen[d.Date] {
			continue
		}
		seen[d.Date] = true
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > MaxPastDeeds {
		out = out[:MaxPastDeeds]
	}
	return out
}

func deedEntryFromModel(d db.Deed) DeedEntry {
	return DeedEntry{
		Date:         d.Date,
		Deed:         d.Text,
		SolvePoints:  d.SolvePoints,
		UploadPoints: d.UploadPoints,
		TotalPoints:  d.TotalPoints,
		Streak:       d.Streak,
		Image:        d.Image,
	}
}

type cachedProgress struct {
	snap        ProgressSnapshot
	dirty       bool
	baseVersion int64
}

// TieredProgressStore 在主存储之上叠加内存缓存：
// 读优先走主存储并刷新缓存，主存储失败时返回缓存副本（Stale）；
// 写失败时暂存为脏数据（Pending），由 Reconcile 回放，版本不匹配的脏数据被丢弃。
type TieredProgressStore struct {
	primary ProgressStore

	mu    sync.Mutex
	cache map[uint]*cachedProgress
}

// NewTieredProgressStore 构造两级存储
func NewTieredProgressStore(primary ProgressStore) *TieredProgressStore {
	return &TieredProgressStore{primary: primary, cache: make(map[uint]*cachedProgress)}
}

// Load 见类型说明。
func (s *TieredProgressStore) Load(ctx context.Context, userID uint) (*ProgressSnapshot, error) {
	if s.isDirty(userID) {
		if err := s.reconcileOne(ctx, userID); err != nil {
			log.Printf("[PROGRESS] reconcile user %d before load: %v", userID, err)
		}
	}

	snap, err := s.primary.Load(ctx, userID)
	if err == nil {
		s.mu.Lock()
		if entry, ok := s.cache[userID]; !ok || !entry.dirty {
			s.cache[userID] = &cachedProgress{snap: snap.clone()}
		}
		s.mu.Unlock()
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.cache[userID]; ok {
		log.Printf("[PROGRESS] primary load failed for user %d, serving cache: %v", userID, err)
		out := entry.snap.clone()
		out.Stale = true
		out.Pending = entry.dirty
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrProgressUnavailable, err)
}

// Save 见类型说明。版本冲突直接返回，不进入缓存。
func (s *TieredProgressStore) Save(ctx context.Context, snap ProgressSnapshot, expectedVersion int64) (*ProgressSnapshot, error) {
	saved, err := s.primary.Save(ctx, snap, expectedVersion)
	if err == nil {
		s.mu.Lock()
		s.cache[snap.UserID] = &cachedProgress{snap: saved.clone()}
		s.mu.Unlock()
		return saved, nil
	}
	if errors.Is(err, ErrProgressConflict) {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := expectedVersion
	if entry, ok := s.cache[snap.UserID]; ok {
		if entry.dirty {
			// 连续的离线写入共享同一个基线版本
			base = entry.baseVersion
		} else if expectedVersion != AnyVersion && entry.snap.Version != expectedVersion {
			return nil, ErrProgressConflict
		}
	}

	pending := snap.clone()
	pending.PastDeeds = normalizeDeeds(pending.PastDeeds)
	pending.Pending = true
	pending.Stale = false
	s.cache[snap.UserID] = &cachedProgress{snap: pending, dirty: true, baseVersion: base}
	log.Printf("[PROGRESS] primary save failed for user %d, kept pending in cache: %v", snap.UserID, err)

	out := pending.clone()
	return &out, nil
}

// Reconcile 回放所有脏数据，返回仍未成功的错误。
func (s *TieredProgressStore) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]uint, 0, len(s.cache))
	for id, entry := range s.cache {
		if entry.dirty {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.reconcileOne(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PendingCount 返回尚未回放的脏数据数量。
func (s *TieredProgressStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, entry := range s.cache {
		if entry.dirty {
			n++
		}
	}
	return n
}

// Run 按固定间隔执行 Reconcile，直到 ctx 结束。
func (s *TieredProgressStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				log.Printf("[PROGRESS] reconcile: %v", err)
			}
		}
	}
}

func (s *TieredProgressStore) isDirty(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[userID]
	return ok && entry.dirty
}

func (s *TieredProgressStore) reconcileOne(ctx context.Context, userID uint) error {
	s.mu.Lock()
	entry, ok := s.cache[userID]
	if !ok || !entry.dirty {
		s.mu.Unlock()
		return nil
	}
	snap := entry.snap.clone()
	base := entry.baseVersion
	s.mu.Unlock()

	snap.Pending = false
	saved, err := s.primary.Save(ctx, snap, base)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.cache[userID]
	if !ok || current != entry {
		// 回放期间又有新的写入，留给下一轮
		return nil
	}
	switch {
	case err == nil:
		s.cache[userID] = &cachedProgress{snap: saved.clone()}
		return nil
	case errors.Is(err, ErrProgressConflict):
		log.Printf("[PROGRESS] dropping pending write for user %d: primary moved past version %d", userID, base)
		delete(s.cache, userID)
		return nil
	default:
		return fmt.Errorf("reconcile user %d: %w", userID, err)
	}
}
