package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decodeit/internal/cipher"
	"github.com/decodeit/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeService 生成并校验每日善行密文
type ChallengeService struct {
	db        *gorm.DB
	accounts  *AccountService
	progress  *ProgressService
	generator DeedGenerator
	codec     *cipher.Codec
	now       func() time.Time
}

// ChallengeView 是下发给客户端的当日挑战，明文只在完成后返回。
type ChallengeView struct {
	Date        string        `json:"date"`
	Sign        string        `json:"sign"`
	Insight     ZodiacInsight `json:"insight"`
	CipherText  string        `json:"cipherText"`
	DecodeShift int           `json:"decodeShift"`
	Completed   bool          `json:"completed"`
	Deed        string        `json:"deed,omitempty"`
}

// SolveResult 是提交答案的结果。
type SolveResult struct {
	Correct  bool              `json:"correct"`
	Message  string            `json:"message"`
	Deed     *DeedEntry        `json:"deed,omitempty"`
	Progress *ProgressSnapshot `json:"progress,omitempty"`
}

// NewChallengeService 构造 ChallengeService，codec/now 为空时使用默认值。
func NewChallengeService(gdb *gorm.DB, accounts *AccountService, progress *ProgressService, generator DeedGenerator, codec *cipher.Codec, now func() time.Time) *ChallengeService {
	if codec == nil {
		codec = cipher.NewCodec(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &ChallengeService{
		db:        gdb,
		accounts:  accounts,
		progress:  progress,
		generator: generator,
		codec:     codec,
		now:       now,
	}
}

// Today 返回当天挑战，不存在时根据生日星座生成。
func (s *ChallengeService) Today(ctx context.Context, userID uint) (*ChallengeView, error) {
	date := FormatDate(s.now())

	challenge, err := s.find(ctx, userID, date)
	if err == nil {
		return s.view(ctx, userID, challenge)
	}
	if !errors.Is(err, ErrChallengeNotStarted) {
		return nil, err
	}

	user, err := s.accounts.Get(userID)
	if err != nil {
		return nil, err
	}
	sign, err := ZodiacForBirthday(user.Birthday)
	if err != nil {
		return nil, err
	}

	deed, err := s.generator.GenerateDeed(ctx, sign)
	if err != nil {
		return nil, err
	}
	enc := s.codec.Encode(deed)

	record := db.DailyChallenge{
		UserID:     userID,
		Date:       date,
		Sign:       sign,
		Deed:       deed,
		Shift:      enc.Shift,
		CipherText: enc.CipherText,
	}
	// 并发生成时以先写入者为准
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("save challenge: %w", err)
	}

	challenge, err = s.find(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID, challenge)
}

// Solve 校验解码答案，正确时记入进度。image 可为空。
func (s *ChallengeService) Solve(ctx context.Context, userID uint, answer, image string) (*SolveResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrAnswerRequired
	}

	challenge, err := s.find(ctx, userID, FormatDate(s.now()))
	if err != nil {
		return nil, err
	}
	if !cipher.Matches(answer, challenge.Deed) {
		return &SolveResult{Correct: false, Message: "❌ Incorrect, try again!"}, nil
	}

	snap, entry, err := s.progress.CompleteDeed(ctx, userID, DeedCompletion{Deed: challenge.Deed, Image: image})
	if err != nil {
		return nil, err
	}

	completedAt := s.now()
	if err := s.db.WithContext(ctx).Model(challenge).Update("completed_at", &completedAt).Error; err != nil {
		return nil, fmt.Errorf("mark challenge completed: %w", err)
	}

	return &SolveResult{Correct: true, Message: "✅ Correct! Well done!", Deed: entry, Progress: snap}, nil
}

func (s *ChallengeService) find(ctx context.Context, userID uint, date string) (*db.DailyChallenge, error) {
	var challenge db.DailyChallenge
	if err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotStarted
		}
		return nil, fmt.Errorf("find challenge: %w", err)
	}
	return &challenge, nil
}

func (s *ChallengeService) view(ctx context.Context, userID uint, c *db.DailyChallenge) (*ChallengeView, error) {
	view := &ChallengeView{
		Date:        c.Date,
		Sign:        c.Sign,
		Insight:     InsightFor(c.Sign),
		CipherText:  c.CipherText,
		DecodeShift: cipher.DecodeShift(c.Shift),
		Completed:   c.CompletedAt != nil,
	}
	if !view.Completed {
		snap, err := s.progress.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		view.Completed = HasCompletedToday(snap.LastDeedDate, snap.PastDeeds, s.now())
	}
	if view.Completed {
		view.Deed = c.Deed
	}
	return view, nil
}
