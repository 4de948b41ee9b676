package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionActorKey = "actor"
	contextActorKey = "CurrentActor"
	actorHeader     = "X-Actor"
)

// InjectActor puts the display name of whoever is making the request into the context:
// the X-Actor header if present, else the name stored by SetSessionActor. It is used only
// to stamp createdBy and updatedBy, never to grant access.
func InjectActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if name := strings.TrimSpace(c.GetHeader(actorHeader)); name != "" {
			c.Set(contextActorKey, name)
		} else if name, ok := sessions.Default(c).Get(sessionActorKey).(string); ok && name != "" {
			c.Set(contextActorKey, name)
		}
		c.Next()
	}
}

// Actor returns the name InjectActor found, or "".
func Actor(c *gin.Context) string {
	return c.GetString(contextActorKey)
}

func SetSessionActor(c *gin.Context, name string) error {
	sess := sessions.Default(c)
	sess.Set(sessionActorKey, name)
	return sess.Save()
}

func ClearSessionActor(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(sessionActorKey)
	return sess.Save()
}
