package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"compsec/internal/apperr"
	"compsec/internal/logger"
	"compsec/internal/middleware"
	"compsec/internal/validation"
)

// now is swapped in tests.
var now = time.Now

// respondError writes err as {code, message, details}. Internal causes are logged, not sent.
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		logger.L().Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.HTTPStatus(), e)
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Invalid("invalid request body", validation.Messages(err)...))
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondError(c, apperr.Invalid("invalid query", validation.Messages(err)...))
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Invalid("invalid "+name, c.Param(name)+" is not a valid id"))
		return 0, false
	}
	return uint(id), true
}

// resolveActor picks the body's name, else the request actor. Writes that record an author
// fail with 400 when neither is known.
func resolveActor(c *gin.Context, fromBody string, field string) (string, bool) {
	if name := strings.TrimSpace(fromBody); name != "" {
		return name, true
	}
	if name := middleware.Actor(c); name != "" {
		return name, true
	}
	respondError(c, apperr.Invalid("invalid request body", field+" is required"))
	return "", false
}

// actorOr is the request actor, or fallback when none is known.
func actorOr(c *gin.Context, fallback string) string {
	if name := middleware.Actor(c); name != "" {
		return name
	}
	return fallback
}

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type message struct {
	Message string `json:"message"`
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, message{Message: what + " deleted successfully"})
}
