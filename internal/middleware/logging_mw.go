package middleware

import (
	"bytes"
	"io"
	"time"

	"pizza_service/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLoggedBody = 4 << 10

// replayBody hands the handler the logged prefix followed by the unread remainder.
type replayBody struct {
	io.Reader
	io.Closer
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger logs each request once it completes, with secrets masked in both bodies.
// 5xx responses log at error level and 4xx at warn.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()

		var reqBody []byte
		if body := c.Request.Body; body != nil {
			reqBody, _ = io.ReadAll(io.LimitReader(body, maxLoggedBody))
			c.Request.Body = replayBody{
				Reader: io.MultiReader(bytes.NewReader(reqBody), body),
				Closer: body,
			}
		}
		w := bodyLogWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("ip", c.ClientIP()),
			zap.Bool("authorized", c.GetHeader("Authorization") != ""),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("req_body", logger.Sanitize(truncate(reqBody))),
			zap.String("res_body", logger.Sanitize(truncate(w.body.Bytes()))),
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		b = b[:maxLoggedBody]
	}
	return string(b)
}
