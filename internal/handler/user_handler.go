package handler

import (
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// GetProfile 返回当前用户资料
func (a *API) GetProfile(c *gin.Context) {
	respondOK(c, profileResponse{Success: true, User: service.ToPublicUser(*currentUser(c))})
}

// UpdateProfile 修改用户名、主题或生日
func (a *API) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := a.accounts.UpdateProfile(currentUser(c).ID, service.ProfileInput{
		Username: req.Username,
		Theme:    req.Theme,
		Birthday: req.Birthday,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, profileResponse{Success: true, User: *user})
}

// ChangePassword 修改密码
func (a *API) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.accounts.ChangePassword(currentUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, MessageResponse{Success: true, Message: "Password updated successfully"})
}

// DeleteAccount 删除账号及全部数据
func (a *API) DeleteAccount(c *gin.Context) {
	if err := a.accounts.Delete(currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, MessageResponse{Success: true, Message: "Account deleted successfully"})
}
