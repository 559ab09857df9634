package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports Postgres and Redis connectivity. A register that cannot
// reach either backend should fail its probe rather than accept orders
// it cannot persist.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	pingDB := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		healthy := true
		probe := func(err error) string {
			if err != nil {
				healthy = false
				return "error"
			}
			return "connected"
		}

		body := gin.H{
			"db":    probe(pingDB(ctx)),
			"redis": probe(rdb.Ping(ctx).Err()),
		}
		body["ok"] = healthy

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
