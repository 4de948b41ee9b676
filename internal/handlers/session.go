package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"compsec/internal/middleware"
)

type sessionRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type sessionResponse struct {
	Actor string `json:"actor"`
}

// StartSession remembers a display name in the session cookie; later writes from the
// same client are attributed to it.
func StartSession(c *gin.Context) {
	var req sessionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := middleware.SetSessionActor(c, req.Name); err != nil {
		respondError(c, errors.Wrap(err, "save session"))
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Actor: req.Name})
}

func CurrentSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse{Actor: middleware.Actor(c)})
}

func EndSession(c *gin.Context) {
	if err := middleware.ClearSessionActor(c); err != nil {
		respondError(c, errors.Wrap(err, "clear session"))
		return
	}
	c.JSON(http.StatusOK, message{Message: "Session ended"})
}
