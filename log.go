package transmitter

import (
	"io"
	"os"
	"sync"

	"github.com/mgutz/logxi/v1"
)

var logger = NewLogger("transmitter")

// output forwards log lines to a writer that can be swapped after the
// loggers were created.
type output struct {
	mu sync.RWMutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.w.Write(p)
}

var (
	out = &output{w: os.Stderr}

	mu      sync.Mutex
	level   = log.LevelInfo
	loggers = map[string]log.Logger{}
)

// NewLogger returns the named logger. All loggers share one output and one
// level.
func NewLogger(name string) log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := log.NewLogger(log.NewConcurrentWriter(out), name)
	l.SetLevel(level)
	loggers[name] = l
	return l
}

// SetLogOutput redirects every logger to w.
func SetLogOutput(w io.Writer) {
	out.mu.Lock()
	out.w = w
	out.mu.Unlock()
}

// SetLogLevel sets the level of every logger, e.g. log.LevelDebug.
func SetLogLevel(lvl int) {
	mu.Lock()
	defer mu.Unlock()
	level = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
}
