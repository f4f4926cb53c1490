package service

import (
	"errors"
)

// ErrorKind 区分错误类别，handler 据此映射 HTTP 状态码。
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindUpstream   ErrorKind = "upstream"
	KindInternal   ErrorKind = "internal"
)

// Error 是带类别与面向用户消息的错误。
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf 返回错误链上第一个 *Error 的类别，找不到时视为内部错误。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf 返回面向用户的消息，内部错误不暴露细节。
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Server error"
}

var (
	// 注册与登录
	ErrInvalidEmail        = newError(KindValidation, "Please enter a valid email address.")
	ErrPasswordTooShort    = newError(KindValidation, "Password must be at least 4 characters.")
	ErrBirthdayRequired    = newError(KindValidation, "Birthday is required.")
	ErrInvalidBirthday     = newError(KindValidation, "Birthday must be a valid date (YYYY-MM-DD).")
	ErrInvalidTheme        = newError(KindValidation, "Theme must be dark or light.")
	ErrInvalidUsername     = newError(KindValidation, "Username cannot be empty.")
	ErrIdentifierRequired  = newError(KindValidation, "Please enter your email or username.")
	ErrEmailTaken          = newError(KindConflict, "An account with this email already exists.")
	ErrUsernameTaken       = newError(KindConflict, "This username is already taken.")
	ErrAccountNotFound     = newError(KindAuth, "No account found with this email or username. Please register.")
	ErrIncorrectPassword   = newError(KindAuth, "Incorrect password.")
	ErrCurrentPassword     = newError(KindAuth, "Current password is incorrect.")
	ErrPasswordsRequired   = newError(KindValidation, "Current and new password are required.")
	ErrUserNotFound        = newError(KindNotFound, "User not found")
	ErrTokenMissing        = newError(KindAuth, "No token provided")
	ErrTokenInvalid        = newError(KindAuth, "Invalid token")
	ErrTokenUserNotFound   = newError(KindAuth, "User not found")
	ErrProgressConflict    = newError(KindConflict, "Your progress was updated elsewhere. Please reload and try again.")
	ErrProgressUnavailable = newError(KindUpstream, "Progress storage is temporarily unavailable. Please try again later.")

	// 善行挑战
	ErrAlreadyCompleted    = newError(KindConflict, "You have already completed today's deed.")
	ErrAnswerRequired      = newError(KindValidation, "Please enter your decoded answer.")
	ErrDeedUnavailable     = newError(KindUpstream, "Could not generate today's deed. Please try again later.")
	ErrChallengeNotStarted = newError(KindNotFound, "No deed has been generated for today yet.")

	// 点赞
	ErrEntryIDRequired = newError(KindValidation, "entryId is required")
	ErrEntryIDsInvalid = newError(KindValidation, "entryIds must be an array")

	// 小游戏
	ErrUnknownGame     = newError(KindNotFound, "Unknown game")
	ErrOutOfGuesses    = newError(KindConflict, "No guesses left for today's puzzle.")
	ErrGameAlreadyOver = newError(KindConflict, "Today's puzzle is already finished.")
	ErrInvalidGuess    = newError(KindValidation, "Invalid guess")

	// 联系表单
	ErrContactFieldsRequired = newError(KindValidation, "All fields are required")
	ErrContactInvalidEmail   = newError(KindValidation, "Invalid email address")
	ErrMailNotConfigured     = newError(KindInternal, "Email service not configured. Please contact the administrator.")
	ErrMailAuth              = newError(KindUpstream, "Email authentication failed. Please contact the administrator.")
	ErrMailConnection        = newError(KindUpstream, "Could not connect to email server. Please try again later.")
	ErrMailSend              = newError(KindUpstream, "Failed to send message. Please try again later.")

	// 上传
	ErrImageRequired = newError(KindValidation, "No image uploaded")
	ErrImageTooLarge = newError(KindValidation, "Image must be 5 MB or smaller")
	ErrImageInvalid  = newError(KindValidation, "Only png, jpeg, gif or webp images are allowed")
	ErrImageUnknown  = newError(KindValidation, "Image must be uploaded before it can be attached")
)
