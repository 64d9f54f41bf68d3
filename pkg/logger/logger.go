package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger from environment variables.
// Production gets JSON output for log shippers; development keeps the
// human-readable text formatter.
func Init() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if os.Getenv("ENV") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logrus.SetOutput(os.Stdout)
}
