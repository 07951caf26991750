package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init is called.
var Log = logrus.New()

// Init configures Log for JSON output at the given level. An empty or
// unknown level falls back to info.
func Init(level ...string) {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl := logrus.InfoLevel
	if len(level) > 0 {
		if parsed, err := logrus.ParseLevel(level[0]); err == nil {
			lvl = parsed
		}
	}
	Log.SetLevel(lvl)
}
