package middleware

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	localRequestID = "access_log.rid"
	localFields    = "access_log.fields"
)

type AccessLogMiddleware struct {
	logger *log.Logger
}

func NewAccessLogMiddleware(logger *log.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AccessLogMiddleware{logger: logger}
}

// Annotate adds key=value to the access line of the current request. Fields
// keep the order they were added in.
func Annotate(c fiber.Ctx, key string, value any) {
	if c == nil || key == "" {
		return
	}
	fields, _ := c.Locals(localFields).([]string)
	c.Locals(localFields, append(fields, fmt.Sprintf("%s=%v", key, value)))
}

// RequestID returns the id the access log assigned to the request.
func RequestID(c fiber.Ctx) string {
	if c == nil {
		return ""
	}
	rid, _ := c.Locals(localRequestID).(string)
	return rid
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := strings.TrimSpace(c.Get(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(localRequestID, rid)
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		if m == nil || m.logger == nil {
			return err
		}

		line := fmt.Sprintf(
			"HTTP access | rid=%s ip=%s method=%s path=%s status=%d latency=%s req_bytes=%d resp_bytes=%d",
			rid, c.IP(), c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start),
			c.Request().Header.ContentLength(), len(c.Response().Body()),
		)
		if fields, _ := c.Locals(localFields).([]string); len(fields) > 0 {
			line += " " + strings.Join(fields, " ")
		}
		m.logger.Print(line)

		return err
	}
}
