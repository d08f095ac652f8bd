// Package diag is the module's one diagnostic surface: every fatal or
// recoverable condition spec.md §7 calls for is reported through it as
// one line on standard error whose message is prefixed with the
// offending path.
package diag

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return l
}

// Errorf reports a fatal condition for path. Callers still propagate
// the error up the call stack; this only produces the user-visible
// line.
func Errorf(path, format string, args ...any) {
	log.Errorf("%s: %s", path, fmt.Sprintf(format, args...))
}

// Warnf reports a recoverable condition (FileMismatch,
// ResourceParseFailure) for path.
func Warnf(path, format string, args ...any) {
	log.Warnf("%s: %s", path, fmt.Sprintf(format, args...))
}
