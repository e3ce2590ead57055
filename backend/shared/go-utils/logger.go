package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// InitLogger configures the shared logger. LOG_LEVEL picks the level
// (default info) and LOG_FORMAT=json switches to structured output.
func InitLogger(appName string) {
	Logger.SetOutput(os.Stdout)

	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
		Logger.AddHook(&fieldHook{key: "app", value: appName})
		return
	}

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.AddHook(&appNameHook{appName})
}

// fieldHook stamps a constant field on every entry.
type fieldHook struct {
	key, value string
}

func (h *fieldHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fieldHook) Fire(entry *logrus.Entry) error {
	entry.Data[h.key] = h.value
	return nil
}
