// Package log provides the process-wide structured logger and small
// logging helpers, grounded on the teacher's go-kit/log based
// pkg/util/log package.
package log

import (
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/time/rate"
)

// Logger is the process-wide logger. Callers wrap it with level.Debug,
// level.Info, level.Warn, or level.Error rather than logging through it
// directly.
var Logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

// InitLogger replaces Logger with one at the given minimum level and
// attaches a timestamp and caller field, following the teacher's
// cmd-entrypoint logger setup.
func InitLogger(logLevel string) error {
	lvl, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = level.NewFilter(l, lvl)
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	Logger = l
	return nil
}

func parseLevel(logLevel string) (level.Option, error) {
	switch logLevel {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, errUnknownLevel(logLevel)
	}
}

type errUnknownLevel string

func (e errUnknownLevel) Error() string {
	return "log: unknown level " + string(e)
}

// RateLimitedLogger drops log lines past a maximum rate, used to keep a
// noisy repeated condition (e.g. a request rejected every tick while a
// resource stays overloaded) from flooding output.
type RateLimitedLogger struct {
	next     log.Logger
	sometime rate.Sometimes
}

// NewRateLimitedLogger returns a logger that forwards to next at most
// maxPerSecond times per second, dropping the rest silently.
func NewRateLimitedLogger(maxPerSecond int, next log.Logger) *RateLimitedLogger {
	if maxPerSecond <= 0 {
		maxPerSecond = 1
	}
	return &RateLimitedLogger{
		next:     next,
		sometime: rate.Sometimes{Interval: time.Second / time.Duration(maxPerSecond)},
	}
}

// Log forwards keyvals to the underlying logger, subject to the rate limit.
func (r *RateLimitedLogger) Log(keyvals ...interface{}) error {
	var err error
	r.sometime.Do(func() {
		err = r.next.Log(keyvals...)
	})
	return err
}
