package handler

import (
	"github.com/decodeit/internal/service"
)

// Services 是 handler 依赖的全部服务，由 cmd/server 显式组装。
type Services struct {
	Tokens     *service.TokenService
	Accounts   *service.AccountService
	Progress   *service.ProgressService
	Likes      *service.LikeService
	Challenges *service.ChallengeService
	Games      *service.GameService
	Contact    *service.ContactService
	Images     *service.ImageService
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	tokens     *service.TokenService
	accounts   *service.AccountService
	progress   *service.ProgressService
	likes      *service.LikeService
	challenges *service.ChallengeService
	games      *service.GameService
	contact    *service.ContactService
	images     *service.ImageService
	openapi    []byte
}

// NewAPI constructs a handler set with shared services.
func NewAPI(s Services) *API {
	return &API{
		tokens:     s.Tokens,
		accounts:   s.Accounts,
		progress:   s.Progress,
		likes:      s.Likes,
		challenges: s.Challenges,
		games:      s.Games,
		contact:    s.Contact,
		images:     s.Images,
		openapi:    mustOpenAPIDocument(),
	}
}
