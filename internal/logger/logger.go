package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Entry = logrus.Entry

type Fields = logrus.Fields

// Init настраивает JSON-формат логов и уровень по переменным окружения.
// LOG_LEVEL имеет приоритет над DEBUG=true.
func Init() {
	InitWithOutput(os.Stdout)
}

// InitWithOutput работает как Init, но пишет в out (используется в тестах).
func InitWithOutput(out io.Writer) {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	Log.SetOutput(out)
	Log.SetLevel(levelFromEnv())
}

func levelFromEnv() logrus.Level {
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if lvl, err := logrus.ParseLevel(raw); err == nil {
			return lvl
		}
	}
	if os.Getenv("DEBUG") == "true" {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
