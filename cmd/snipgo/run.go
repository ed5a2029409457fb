package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"go.klb.dev/snipgo/internal/action"
	"go.klb.dev/snipgo/internal/menu"
	"go.klb.dev/snipgo/internal/repo"
	"go.klb.dev/snipgo/internal/session"
	"go.klb.dev/snipgo/internal/snippet"
)

// run is the whole one-shot flow: probe the environment, list snippets, let
// the user pick one, then normalize and act on it. Only the selected file is
// ever read. A cancelled menu is a silent success.
func run(v *viper.Viper) error {
	setupLogging(v)

	backends, err := session.Prober{}.Detect(v.GetString("menu"))
	if err != nil {
		return err
	}
	slog.Debug("backends resolved",
		"display", backends.Display,
		"menu", backends.Menu,
		"typer", backends.Typer,
		"clip", backends.Clip,
	)

	root, err := filepath.Abs(v.GetString("dir"))
	if err != nil {
		return fmt.Errorf("snippet dir: %w", err)
	}
	follow := !v.GetBool("no-follow")

	entries, err := repo.List(root, repo.Options{
		FollowSymlinks: follow,
		IncludeAll:     !v.GetBool("text-only"),
		Alpha:          v.GetBool("alpha"),
	})
	if err != nil {
		return err
	}
	slog.Debug("snippets listed", "root", root, "count", len(entries))

	sel, err := menu.Select(menu.ExecRunner{}, backends.Menu, entries, v.GetString("prompt"), defaultAction(v))
	if err != nil {
		return err
	}
	if sel.Cancelled() {
		slog.Debug("selection cancelled")
		return nil
	}
	slog.Debug("snippet selected", "entry", sel.Entry, "action", sel.Action)

	path, err := repo.Resolve(root, sel.Entry, follow)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snippet: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	ex := &action.Executor{
		Backends: backends,
		PasteKey: v.GetString("paste-key"),
		SelfExec: self,
		Run:      action.ExecRunner{},
	}
	return ex.Execute(sel.Action, snippet.Normalize(raw))
}

// defaultAction maps the mutually exclusive action flags onto the action used
// for plain menu confirmation. Typing is the default default: it is the one
// action that needs no clipboard tool at all.
func defaultAction(v *viper.Viper) action.Action {
	switch {
	case v.GetBool("clip"):
		return action.Clip
	case v.GetBool("paste"):
		return action.Paste
	default:
		return action.Type
	}
}
