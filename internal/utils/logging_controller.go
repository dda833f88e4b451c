package utils

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// suppressionLevel sits above every zap level so nothing is emitted while suppressed.
const suppressionLevel = zapcore.FatalLevel + 1

// LoggingController is the explicit handle governing a logger's output level.
// Routines that must silence console output temporarily suppress through it and
// restore the previous level afterwards.
type LoggingController struct {
	level         zap.AtomicLevel
	mutex         sync.Mutex
	suppressed    bool
	previousLevel zapcore.Level
}

// NewLoggingController wraps the supplied atomic level in a controller.
func NewLoggingController(level zap.AtomicLevel) *LoggingController {
	return &LoggingController{level: level}
}

// Suppress silences all log output until Restore runs. Nested calls are collapsed.
func (controller *LoggingController) Suppress() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	if controller.suppressed {
		return
	}
	controller.previousLevel = controller.level.Level()
	controller.level.SetLevel(suppressionLevel)
	controller.suppressed = true
}

// Restore reinstates the log level that was active before Suppress.
func (controller *LoggingController) Restore() {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	if !controller.suppressed {
		return
	}
	controller.level.SetLevel(controller.previousLevel)
	controller.suppressed = false
}

// Suppressed reports whether output is currently silenced.
func (controller *LoggingController) Suppressed() bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.suppressed
}
