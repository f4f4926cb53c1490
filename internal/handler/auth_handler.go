package handler

import (
	"errors"
	"strings"

	"github.com/decodeit/internal/db"
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "__current_user"

// Register 创建账号并返回 token
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := a.accounts.Register(service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Birthday: req.Birthday,
		Username: req.Username,
		Theme:    req.Theme,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authResponse{Success: true, Token: res.Token, User: res.User})
}

// Login 邮箱或用户名登录
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	identifier := req.Identifier
	if strings.TrimSpace(identifier) == "" {
		identifier = req.Email
	}
	if req.Password == "" {
		respondError(c, &service.Error{Kind: service.KindValidation, Message: "Please enter your password."})
		return
	}

	res, err := a.accounts.Login(identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authResponse{Success: true, Token: res.Token, User: res.User})
}

// AuthRequired 校验 bearer token，并把用户放入上下文
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolveUser(c)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时设置用户，否则按匿名继续。
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.resolveUser(c); err == nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

func (a *API) resolveUser(c *gin.Context) (*db.User, error) {
	raw, err := service.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}
	id, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := a.accounts.Get(id)
	if errors.Is(err, service.ErrUserNotFound) {
		return nil, service.ErrTokenUserNotFound
	}
	return user, err
}

func currentUser(c *gin.Context) *db.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*db.User); ok {
			return user
		}
	}
	return nil
}
