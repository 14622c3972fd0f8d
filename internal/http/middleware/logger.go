package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is a middleware that logs each HTTP request in JSON format to stdout.
// Fields: ts, level, msg, request_id, method, path (route pattern when matched), status,
// latency (milliseconds), user_id when authenticated.
func Logger(loc *time.Location) fiber.Handler {
	return LoggerWithWriter(os.Stdout, loc)
}

// LoggerWithWriter is Logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		path := c.Route().Path
		if path == "" || path == "/" {
			path = c.Path()
		}
		level := "info"
		if status >= fiber.StatusInternalServerError {
			level = "error"
		}

		entry := map[string]any{
			"ts":         time.Now().In(loc).Format(time.RFC3339Nano),
			"level":      level,
			"msg":        "http_request",
			"request_id": rid,
			"method":     c.Method(),
			"path":       path,
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if id, ok := IdentityFrom(c); ok {
			entry["user_id"] = id.UserID
		}
		_ = enc.Encode(entry)

		return err
	}
}
