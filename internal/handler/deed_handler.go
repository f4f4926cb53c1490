package handler

import (
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// Zodiac 返回 12 星座简介
func (a *API) Zodiac(c *gin.Context) {
	respondOK(c, zodiacResponse{Success: true, Signs: service.ZodiacInsights()})
}

// TodayDeed 返回今天的加密善行，首次访问时生成
func (a *API) TodayDeed(c *gin.Context) {
	view, err := a.challenges.Today(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, challengeResponse{Success: true, Challenge: view})
}

// SolveDeed 提交解码答案，答错也返回 200
func (a *API) SolveDeed(c *gin.Context) {
	var req solveRequest
	if !bindJSON(c, &req) {
		return
	}

	// 图片必须是本站上传过的文件
	if req.Image != "" && (a.images == nil || !a.images.Owns(req.Image)) {
		respondError(c, service.ErrImageUnknown)
		return
	}

	res, err := a.challenges.Solve(c.Request.Context(), currentUser(c).ID, req.Answer, req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, solveResponse{Success: true, SolveResult: *res})
}
