package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the process logger. It is slog.Default until InitLogger runs.
var L = slog.Default()

// ParseLevel maps a config level name to a slog level. Unknown names fall
// back to info and report ok=false.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// InitLogger installs a JSON logger writing to w (stderr when nil) as both
// L and the slog default. Call it once at startup, after loading config.
func InitLogger(levelName string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, ok := ParseLevel(levelName)

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)

	if !ok {
		L.Warn("invalid log level, defaulting to info", "configured_level", levelName)
	}
	return L
}
