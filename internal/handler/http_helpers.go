package handler

import (
	"log"
	"net/http"

	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

var errInvalidBody = &service.Error{Kind: service.KindValidation, Message: "Invalid request body"}

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation: http.StatusBadRequest,
	service.KindAuth:       http.StatusUnauthorized,
	service.KindNotFound:   http.StatusNotFound,
	service.KindConflict:   http.StatusConflict,
	service.KindUpstream:   http.StatusServiceUnavailable,
	service.KindInternal:   http.StatusInternalServerError,
}

// statusFor 把错误类别映射为 HTTP 状态码。
func statusFor(err error) int {
	if status, ok := kindStatus[service.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func respondError(c *gin.Context, err error) {
	respondErrorStatus(c, statusFor(err), err)
}

// respondErrorStatus 输出统一的失败信封，内部错误只记录日志不外泄细节。
func respondErrorStatus(c *gin.Context, status int, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInternal || kind == service.KindUpstream {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Success: false, Error: service.MessageOf(err), Kind: string(kind)})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, errInvalidBody)
		return false
	}
	return true
}
