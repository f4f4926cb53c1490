package handler

import (
	"net/http"

	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

// Contact 转发联系表单
// 校验失败返回 400，邮件相关的失败一律 500
func (a *API) Contact(c *gin.Context) {
	var req service.ContactMessage
	if !bindJSON(c, &req) {
		return
	}

	if err := a.contact.Submit(c.Request.Context(), req); err != nil {
		status := http.StatusInternalServerError
		if service.KindOf(err) == service.KindValidation {
			status = http.StatusBadRequest
		}
		respondErrorStatus(c, status, err)
		return
	}
	respondOK(c, MessageResponse{Success: true, Message: "Message sent successfully!"})
}

// Health 存活检查
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
