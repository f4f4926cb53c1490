package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/decodeit/internal/db"
	"gorm.io/gorm"
)

func TestLikeServiceToggle(t *testing.T) {
	likes := NewLikeService(setupServiceTestDB(t))
	ctx := context.Background()
	entry := "ada@example.com_2024-05-09"

	res, err := likes.Toggle(ctx, entry, "Bob@Example.com")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !res.Liked || res.Count != 1 {
		t.Fatalf("expected liked with count 1, got %+v", res)
	}

	res, _ = likes.Toggle(ctx, entry, "cy@example.com")
	if !res.Liked || res.Count != 2 {
		t.Fatalf("expected count 2, got %+v", res)
	}

	res, err = likes.Toggle(ctx, entry, "bob@example.com")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if res.Liked || res.Count != 1 {
		t.Fatalf("expected unlike with count 1, got %+v", res)
	}

	// 取消后可以再次点赞
	res, _ = likes.Toggle(ctx, entry, "bob@example.com")
	if !res.Liked || res.Count != 2 {
		t.Fatalf("expected re-like with count 2, got %+v", res)
	}

	if _, err := likes.Toggle(ctx, "  ", "bob@example.com"); !errors.Is(err, ErrEntryIDRequired) {
		t.Fatalf("expected ErrEntryIDRequired, got %v", err)
	}
}

func TestLikeServiceToggleConcurrentInsertUnlikes(t *testing.T) {
	gdb := setupServiceTestDB(t)
	likes := NewLikeService(gdb)
	ctx := context.Background()
	entry := "ada@example.com_2024-05-09"

	// 在 Toggle 插入之前抢先写入同一条点赞
	injected := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:duplicate_like", func(tx *gorm.DB) {
		like, ok := tx.Statement.Dest.(*db.Like)
		if !ok || injected {
			return
		}
		injected = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO likes (created_at, updated_at, entry_id, user_email) VALUES (?, ?, ?, ?)",
			now, now, like.EntryID, like.UserEmail,
		)
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	res, err := likes.Toggle(ctx, entry, "bob@example.com")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !injected {
		t.Fatal("expected duplicate like to be inserted")
	}
	if res.Liked || res.Count != 0 {
		t.Fatalf("expected duplicate insert to resolve to unlike, got %+v", res)
	}

	var remaining int64
	gdb.Unscoped().Model(&db.Like{}).Where("entry_id = ?", entry).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected no like rows, got %d", remaining)
	}
}

func TestLikeServiceStatusAndCounts(t *testing.T) {
	likes := NewLikeService(setupServiceTestDB(t))
	ctx := context.Background()

	likes.Toggle(ctx, "a", "bob@example.com")
	likes.Toggle(ctx, "a", "cy@example.com")
	likes.Toggle(ctx, "b", "cy@example.com")

	status, err := likes.Status(ctx, []string{"a", "b", "c", "a", ""}, "BOB@example.com")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if len(status) != 3 || !status["a"] || status["b"] || status["c"] {
		t.Fatalf("unexpected status %+v", status)
	}

	counts, err := likes.Counts(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if counts["a"] != 2 || counts["b"] != 1 || counts["c"] != 0 || len(counts) != 3 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	empty, err := likes.Counts(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty counts, got %+v, %v", empty, err)
	}
}
