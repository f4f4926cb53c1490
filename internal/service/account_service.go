package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decodeit/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 4

// AccountService 负责注册、登录与个人资料维护
type AccountService struct {
	db     *gorm.DB
	tokens *TokenService
}

// PublicUser 是对外返回的用户信息，不含密码。
type PublicUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Birthday string `json:"birthday"`
	Theme    string `json:"theme"`
}

// RegisterInput 注册参数。
type RegisterInput struct {
	Email    string
	Password string
	Birthday string
	Username string
	Theme    string
}

// ProfileInput 更新资料时只修改非 nil 字段。
type ProfileInput struct {
	Username *string
	Theme    *string
	Birthday *string
}

// AuthResult 是注册或登录成功后的结果。
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// NewAccountService 构造 AccountService
func NewAccountService(gdb *gorm.DB, tokens *TokenService) *AccountService {
	return &AccountService{db: gdb, tokens: tokens}
}

// ToPublicUser 去掉敏感字段。
func ToPublicUser(u db.User) PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.DisplayName(),
		Birthday: u.Birthday,
		Theme:    normalizeTheme(u.Theme),
	}
}

// Register 创建账号及其空的进度记录，并签发 token。
func (s *AccountService) Register(input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	birthday, err := validateBirthday(input.Birthday)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = db.EmailLocalPart(email)
	}

	theme := db.ThemeDark
	if strings.TrimSpace(input.Theme) != "" {
		if theme, err = validateTheme(input.Theme); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Email:       email,
		Username:    username,
		UsernameKey: strings.ToLower(username),
		Password:    string(hashed),
		Birthday:    birthday,
		Theme:       theme,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if exists, err := recordExists(tx.Model(&db.User{}).Where("email = ?", email)); err != nil {
			return err
		} else if exists {
			return ErrEmailTaken
		}
		if exists, err := recordExists(tx.Model(&db.User{}).Where("username_key = ?", user.UsernameKey)); err != nil {
			return err
		} else if exists {
			return ErrUsernameTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Create(&db.UserProgress{UserID: user.ID}).Error; err != nil {
			return fmt.Errorf("create progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.authResult(user)
}

// Login 支持邮箱或用户名登录，均大小写不敏感。
func (s *AccountService) Login(identifier, password string) (*AuthResult, error) {
	key := strings.ToLower(strings.TrimSpace(identifier))
	if key == "" {
		return nil, ErrIdentifierRequired
	}

	// 邮箱优先，避免用户名与他人邮箱相同时挡住邮箱登录
	var user db.User
	err := s.db.Where("email = ?", key).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("username_key = ?", key).First(&user).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	return s.authResult(user)
}

// Get 根据 ID 获取用户。
func (s *AccountService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile 更新用户名、主题或生日。
func (s *AccountService) UpdateProfile(id uint, input ProfileInput) (*PublicUser, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrInvalidUsername
		}
		key := strings.ToLower(username)
		if key != user.UsernameKey {
			exists, err := recordExists(s.db.Model(&db.User{}).Where("username_key = ? AND id <> ?", key, id))
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrUsernameTaken
			}
		}
		user.Username = username
		user.UsernameKey = key
	}
	if input.Theme != nil {
		theme, err := validateTheme(*input.Theme)
		if err != nil {
			return nil, err
		}
		user.Theme = theme
	}
	if input.Birthday != nil {
		birthday, err := validateBirthday(*input.Birthday)
		if err != nil {
			return nil, err
		}
		user.Birthday = birthday
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	public := ToPublicUser(*user)
	return &public, nil
}

// ChangePassword 校验当前密码后写入新的哈希。
func (s *AccountService) ChangePassword(id uint, current, next string) error {
	if current == "" || next == "" {
		return ErrPasswordsRequired
	}
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrCurrentPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Model(user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete 删除账号及其全部数据。
func (s *AccountService) Delete(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			label string
			run   func() error
		}{
			{"likes", func() error { return tx.Unscoped().Where("user_email = ?", user.Email).Delete(&db.Like{}).Error }},
			{"deeds", func() error { return tx.Unscoped().Where("user_id = ?", id).Delete(&db.Deed{}).Error }},
			{"challenges", func() error { return tx.Unscoped().Where("user_id = ?", id).Delete(&db.DailyChallenge{}).Error }},
			{"game results", func() error { return tx.Unscoped().Where("user_id = ?", id).Delete(&db.GameResult{}).Error }},
			{"progress", func() error { return tx.Unscoped().Where("user_id = ?", id).Delete(&db.UserProgress{}).Error }},
			{"user", func() error { return tx.Unscoped().Delete(&db.User{}, id).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("delete %s: %w", step.label, err)
			}
		}
		return nil
	})
}

func (s *AccountService) authResult(user db.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: ToPublicUser(user)}, nil
}

func recordExists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check existing: %w", err)
	}
	return count > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateBirthday(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrBirthdayRequired
	}
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return "", ErrInvalidBirthday
	}
	return raw, nil
}

func validateTheme(raw string) (string, error) {
	switch theme := strings.ToLower(strings.TrimSpace(raw)); theme {
	case db.ThemeDark, db.ThemeLight:
		return theme, nil
	default:
		return "", ErrInvalidTheme
	}
}

func normalizeTheme(theme string) string {
	if theme == db.ThemeLight {
		return db.ThemeLight
	}
	return db.ThemeDark
}
