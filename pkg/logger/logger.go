// Package logger wraps logrus behind a single process-wide handle so
// every component logs the same structured fields without importing
// logrus directly.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	log  *logrus.Logger
)

// Init configures the package-level logger. Call once at process startup.
func Init(level string) {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stdout)
		log.SetFormatter(&logrus.JSONFormatter{})

		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		log.SetLevel(parsed)
	})
}

// GetLogger returns the process-wide logger, lazily defaulting to info
// level if Init was never called (keeps tests and tools simple).
func GetLogger() *logrus.Logger {
	if log == nil {
		Init("info")
	}
	return log
}
