package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastqash/blog/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// wantsFragment 判断请求是否来自页面内的异步加载。
func wantsFragment(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.EqualFold(c.GetHeader("HX-Request"), "true")
}

func fragmentMode(c *gin.Context) string {
	if wantsFragment(c) {
		return "fragment"
	}
	return "page"
}

// statusForError 将服务层错误映射为 HTTP 状态码。
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSlugConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrImageHost):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fieldErrors 提取校验错误中的字段信息，便于表单回显。
func fieldErrors(err error) map[string]string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	if errors.Is(err, service.ErrSlugConflict) {
		return map[string]string{"title": "a post with the same slug already exists"}
	}
	return nil
}

func (a *API) internalError(c *gin.Context, msg string, err error, keysAndValues ...interface{}) {
	fields := append([]interface{}{"path", c.Request.URL.Path, "err", err}, keysAndValues...)
	a.log.Errorw(msg, fields...)
	c.Error(err)
	if wantsFragment(c) || strings.HasPrefix(c.FullPath(), "/blog/search") {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	a.renderHTML(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Error"})
}
