package middleware

import (
	"net/http"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// reqLog starts a zerolog event carrying the request's identifying fields.
func reqLog(c *gin.Context) *zerolog.Event {
	return log.Error().
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.FullPath())
}

// failClosed answers 500 with the generic envelope. The real cause stays
// in the logs; clients never see stack traces or driver errors.
func failClosed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Internal server error"))
}

// ErrorHandler picks up errors that handlers attached to the context but
// did not answer themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		reqLog(c).Err(c.Errors.Last().Err).Msg("unhandled error")
		failClosed(c)
	}
}

// Recovery converts panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				reqLog(c).Interface("panic", r).Msg("panic recovered")
				failClosed(c)
			}
		}()
		c.Next()
	}
}

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
