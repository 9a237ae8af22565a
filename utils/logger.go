package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLogger mengatur output dan format kedua logger. Level kosong berarti "info".
func InitLogger(level ...string) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// InfoLogger ke stdout
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// ErrorLogger ke stderr
	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl := logrus.InfoLevel
	if len(level) > 0 && level[0] != "" {
		if parsed, err := logrus.ParseLevel(level[0]); err == nil {
			lvl = parsed
		}
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.WarnLevel)
}
