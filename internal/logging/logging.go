// Package logging configures the process-wide slog logger.
//
// snipgo usually runs from a compositor hotkey with stderr wired into the
// session journal, so the non-interactive output is JSON tagged with the
// binary name for journal filtering. An interactive stderr gets tinted
// human-readable lines instead.
package logging

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Sub-second precision matters here: a whole run often fits inside one
// second, between menu dismissal and the injected keystrokes.
const timeFormat = "15:04:05.000"

// Setup installs the default slog logger. Call once, after flag and viper
// parsing.
//
// format is "auto", "text" or "json"; auto picks text on a terminal stderr
// and json otherwise. level accepts the slog level names and defaults to
// warn, keeping a terminal-hosted menu like fzf free of log noise.
func Setup(format, level string) {
	w := os.Stderr

	text := format == "text"
	if format != "json" && format != "text" {
		text = isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}

	if text {
		slog.SetDefault(slog.New(tinter.NewHandler(w, &tinter.Options{
			Level:      lvl,
			TimeFormat: timeFormat,
		})))
		return
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h).With("app", "snipgo"))
}
