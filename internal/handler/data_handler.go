package handler

import (
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// GetUserData 返回积分、连续天数与善行历史
func (a *API) GetUserData(c *gin.Context) {
	snap, err := a.progress.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, userDataResponse{Success: true, Data: snap})
}

// PutUserData 局部更新进度，带 version 时做乐观并发校验
func (a *API) PutUserData(c *gin.Context) {
	var req userDataRequest
	if !bindJSON(c, &req) {
		return
	}

	snap, err := a.progress.Update(c.Request.Context(), currentUser(c).ID, service.UserDataPatch{
		Points:       req.Points,
		Streak:       req.Streak,
		LastDeedDate: req.LastDeedDate,
		PastDeeds:    req.PastDeeds,
		Version:      req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, userDataResponse{Success: true, Data: snap})
}

// Leaderboard 公开排行榜
func (a *API) Leaderboard(c *gin.Context) {
	board, err := a.progress.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, leaderboardResponse{Success: true, Leaderboard: board})
}

// Community 公开的带图善行
func (a *API) Community(c *gin.Context) {
	entries, err := a.progress.Community(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, communityResponse{Success: true, Entries: entries})
}
