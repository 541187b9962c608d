package middleware

import (
	"net/http"
	"time"

	"pizza_service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics counts every request, records its latency and treats 401 answers as failed
// authentication attempts. Failed logins are recorded by the auth handler.
func Metrics(sink metrics.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		sink.Request(c.Request.Method)
		sink.Latency(metrics.LatencyService, time.Since(start))
		if c.Writer.Status() == http.StatusUnauthorized {
			sink.AuthAttempt(false)
		}
	}
}
