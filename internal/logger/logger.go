// Package logger configures the process-wide structured logger.
package logger

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Packages log through it instead of creating their own.
var Log = logrus.New()

// Setup applies the level and output format. JSON is used in production so
// log shippers can index the fields.
func Setup(level string, production bool) {
	Log.SetOutput(os.Stdout)
	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// WithRequest returns an entry tagged with the request method, path and, when
// authenticated, the user id.
func WithRequest(c *fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
	if uid, ok := c.Locals("userID").(uint); ok {
		fields["user_id"] = uid
	}
	return Log.WithFields(fields)
}
