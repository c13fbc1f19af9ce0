package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the run logger: human-readable console output plus a rotated
// JSON file under logDir. Verbose switches both sinks to debug level.
func New(logDir string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "dbguardian.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "ts"

	consoleCfg := zap.NewDevelopmentEncoderConfig()

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), fileWriter, level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(os.Stderr), level),
	)
	return zap.New(core), nil
}
