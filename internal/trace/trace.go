// Package trace configures the *zap.Logger every other internal package
// accepts for its optional -v/-vv tracing, configured the conventional
// zap way: the development config at debug level for -vv, the same
// config at info level for -v, and a genuinely silent logger by default.
package trace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level selects how much internal pipeline detail New reports.
type Level int

const (
	// LevelSilent reports nothing (the default, no -v flag given).
	LevelSilent Level = iota
	// LevelVerbose reports info-level lines (-v); the pipeline's own
	// trace lines are all debug-level, so none of them print at -v.
	LevelVerbose
	// LevelDebug additionally reports one line per lowered
	// instruction/allocation decision (-vv).
	LevelDebug
)

// New builds a *zap.Logger appropriate for level, writing to stderr so
// -v/-vv output never mixes with the emitted assembly on stdout.
func New(level Level) (*zap.Logger, error) {
	if level == LevelSilent {
		return zap.NewNop(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = ""
	if level == LevelVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return cfg.Build()
}

// LevelFromCount maps a repeated CLI flag's count (0, 1, 2+) to a Level,
// the way cmd/zcc reads -v/-vv.
func LevelFromCount(n int) Level {
	switch {
	case n <= 0:
		return LevelSilent
	case n == 1:
		return LevelVerbose
	default:
		return LevelDebug
	}
}
