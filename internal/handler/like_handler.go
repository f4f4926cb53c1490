package handler

import (
	"encoding/json"

	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// ToggleLike 点赞或取消点赞
func (a *API) ToggleLike(c *gin.Context) {
	var req toggleLikeRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := a.likes.Toggle(c.Request.Context(), req.EntryID, currentUser(c).Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toggleLikeResponse{Success: true, Liked: res.Liked, Count: res.Count})
}

// LikeStatus 返回当前用户对一组条目的点赞状态
func (a *API) LikeStatus(c *gin.Context) {
	ids, ok := bindEntryIDs(c)
	if !ok {
		return
	}
	status, err := a.likes.Status(c.Request.Context(), ids, currentUser(c).Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, likeStatusResponse{Success: true, Status: status})
}

// LikeCounts 返回一组条目的点赞数
func (a *API) LikeCounts(c *gin.Context) {
	ids, ok := bindEntryIDs(c)
	if !ok {
		return
	}
	counts, err := a.likes.Counts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, likeCountsResponse{Success: true, Counts: counts})
}

// bindEntryIDs 要求 entryIds 为字符串数组。
func bindEntryIDs(c *gin.Context) ([]string, bool) {
	var req entryIDsRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	var ids []string
	if len(req.EntryIDs) == 0 || req.EntryIDs[0] != '[' || json.Unmarshal(req.EntryIDs, &ids) != nil {
		respondError(c, service.ErrEntryIDsInvalid)
		return nil, false
	}
	return ids, true
}
