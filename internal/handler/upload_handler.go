package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// UploadImage 处理善行照片上传
// 表单字段 image；attach=true 时直接挂到今天已完成的善行上
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageBytes+1<<20)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, service.ErrImageTooLarge)
			return
		}
		respondError(c, service.ErrImageRequired)
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer src.Close()

	stored, err := a.images.Save(src, file.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := uploadResponse{
		Success: true,
		URL:     stored.URL,
		Format:  stored.Format,
		Width:   stored.Width,
		Height:  stored.Height,
	}

	if attach, _ := strconv.ParseBool(c.PostForm("attach")); attach {
		snap, err := a.progress.AttachImage(c.Request.Context(), currentUser(c).ID, stored.URL)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Progress = snap
	}

	respondOK(c, resp)
}
