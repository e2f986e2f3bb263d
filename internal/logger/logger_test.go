package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mergegate/mergegate/internal/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "", "verbose"}

	for _, level := range levels {
		name := level
		if name == "" {
			name = "empty_falls_back_to_info"
		}
		t.Run(name, func(t *testing.T) {
			log := logger.NewLogger(level)
			assert.NotNil(t, log)

			// The level cannot be read back, so exercise every method
			// and make sure none of them panic.
			assert.NotPanics(t, func() {
				log.Debug("debug message")
				log.Info("info message")
				log.Warn("warn message")
				log.Error("error message")
			})
		})
	}
}

func TestNoLogger(t *testing.T) {
	log := logger.NoLogger()
	assert.NotNil(t, log)

	assert.NotPanics(t, func() {
		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		log.Error("error message")
	})
}
