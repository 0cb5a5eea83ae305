package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/eth2030/pairing/log"
)

// setupLogging installs the terminal handler (and, with a log file, a
// rotating JSON handler) as the default of both go-ethereum's logger and
// the engine's log package. The returned closer flushes the log file.
func setupLogging(w io.Writer, lvl slog.Level, logFile string) io.Closer {
	var h slog.Handler = gethlog.NewTerminalHandlerWithLevel(w, lvl, useColor(w))

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		h = teeHandler{h, gethlog.JSONHandlerWithLevel(lj, lvl)}
		closer = lj
	}

	l := log.NewWithHandler(h)
	log.SetDefault(l)
	gethlog.SetDefault(gethlog.NewLogger(l.Handler()))
	return closer
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// teeHandler sends every record to two handlers.
type teeHandler [2]slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return t[0].Enabled(ctx, l) || t[1].Enabled(ctx, l)
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{t[0].WithAttrs(attrs), t[1].WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{t[0].WithGroup(name), t[1].WithGroup(name)}
}
