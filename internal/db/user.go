package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 主题
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// User 定义了玩家账号
// Email 统一小写保存；UsernameKey 是小写用户名，用于大小写不敏感的唯一约束
// Password 保存 bcrypt 哈希
type User struct {
	gorm.Model
	Email       string `gorm:"size:320;uniqueIndex;not null"`
	Username    string `gorm:"size:100;not null"`
	UsernameKey string `gorm:"size:100;uniqueIndex;not null"`
	Password    string `gorm:"not null"`
	Birthday    string `gorm:"size:10"`
	Theme       string `gorm:"size:10;default:dark"`
}

// DisplayName 返回用户名，缺省时取邮箱 @ 前部分。
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return EmailLocalPart(u.Email)
}

// EmailLocalPart 返回邮箱 @ 之前的部分。
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// EnsureUser 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 用于演示数据与运维脚本。
func EnsureUser(email, password, birthday string) error {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		username := EmailLocalPart(trimmedEmail)
		return DB.Transaction(func(tx *gorm.DB) error {
			user := User{
				Email:       trimmedEmail,
				Username:    username,
				UsernameKey: strings.ToLower(username),
				Password:    string(hashed),
				Birthday:    birthday,
				Theme:       ThemeDark,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&UserProgress{UserID: user.ID}).Error
		})
	}

	return nil
}
