// Package logger builds the zerolog logger shared by billingd's commands.
//
// The serve and maintenance commands call Init once from the root command;
// services and handlers then take a Component logger so every line carries
// the part of the billing flow that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the logger is built.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Service and Environment are stamped on every line when set.
	Service     string
	Environment string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	mu      sync.RWMutex
	current *zerolog.Logger
)

// New builds a logger from opts without touching the process-wide one.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Environment != "" {
		fields = fields.Str("env", opts.Environment)
	}
	if !opts.Pretty {
		fields = fields.Caller()
	}
	return fields.Logger()
}

// Init installs the process-wide logger. Later calls keep the first one.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opts)
		current = &l
	}
	return *current
}

// Get returns the installed logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		panic("logger: Get called before Init")
	}
	return *current
}

// Component tags the installed logger with the component that owns it,
// such as "invoices" or "http".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the installed logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
