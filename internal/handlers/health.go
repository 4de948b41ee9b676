package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"compsec/internal/database"
	"compsec/internal/logger"
)

var errNoDatabase = errors.New("database not initialized")

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Health reports ok while the database answers a ping within two seconds.
func Health(c *gin.Context) {
	resp := healthResponse{Status: "ok", Database: "ok", Timestamp: now()}
	if err := pingDB(c.Request.Context()); err != nil {
		logger.L().Warn("health check failed", zap.Error(err))
		resp.Status, resp.Database = "degraded", "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pingDB(ctx context.Context) error {
	if database.DB == nil {
		return errNoDatabase
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
