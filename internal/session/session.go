// Package session probes the display environment and resolves the concrete
// external tools used for the menu, keystroke injection, and clipboard roles.
//
// Probing reads environment variables and the executable search path only; no
// backend is invoked. The result is an immutable Backends value that the rest
// of the run carries around — backend choices never change mid-run.
package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Display identifies the display protocol the session runs under.
type Display string

const (
	DisplayWayland Display = "wayland"
	DisplayX11     Display = "x11"
)

// ClipInternal is the sentinel clipboard choice meaning "no external
// clipboard tool found, use the in-process library fallback".
const ClipInternal = "internal"

// Known menu tools, in auto-probe priority order: compositor-native first,
// then compositor-aware generic, windowing-native, and finally the terminal
// fuzzy finder.
var menuTools = []string{"wofi", "bemenu", "rofi", "dmenu", "fzf"}

var (
	ErrNoSession    = errors.New("no display session detected (neither WAYLAND_DISPLAY nor DISPLAY is set)")
	ErrNoMenuTool   = errors.New("no menu tool found")
	ErrNoTypingTool = errors.New("no typing tool found")
)

// Backends is the resolved tool set for one run. Typer doubles as the paste
// keystroke sender; Clip is an external tool name or ClipInternal.
type Backends struct {
	Display Display
	Menu    string
	Typer   string
	Clip    string
}

// Prober resolves a Backends set from the environment. The zero value probes
// the real process environment and search path; tests substitute both hooks.
type Prober struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

func (p Prober) getenv(key string) string {
	if p.Getenv != nil {
		return p.Getenv(key)
	}
	return os.Getenv(key)
}

func (p Prober) has(tool string) bool {
	look := p.LookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(tool)
	return err == nil
}

func (p Prober) firstOf(tools ...string) string {
	for _, t := range tools {
		if p.has(t) {
			return t
		}
	}
	return ""
}

// Detect resolves the full backend set. menuPref is an exact tool name or
// "auto". Missing dependencies are fatal, with a distinct error per role so
// scripts can tell "install a menu tool" apart from "install a typing tool".
func (p Prober) Detect(menuPref string) (Backends, error) {
	var b Backends

	switch {
	case p.getenv("WAYLAND_DISPLAY") != "":
		b.Display = DisplayWayland
		b.Typer = p.firstOf("wtype", "ydotool")
		b.Clip = p.firstOf("wl-copy", "xclip", "xsel")
	case p.getenv("DISPLAY") != "":
		b.Display = DisplayX11
		b.Typer = p.firstOf("xdotool", "ydotool")
		b.Clip = p.firstOf("xclip", "xsel")
	default:
		// No headless mode: typing and pasting are meaningless without a
		// display target, even if a terminal selector happens to be present.
		return Backends{}, ErrNoSession
	}

	if b.Typer == "" {
		return Backends{}, fmt.Errorf("%w for %s session", ErrNoTypingTool, b.Display)
	}
	if b.Clip == "" {
		b.Clip = ClipInternal
	}

	menu, err := p.resolveMenu(menuPref)
	if err != nil {
		return Backends{}, err
	}
	b.Menu = menu

	return b, nil
}

func (p Prober) resolveMenu(pref string) (string, error) {
	if pref != "" && pref != "auto" {
		if !knownMenuTool(pref) {
			return "", fmt.Errorf("%w: unsupported menu tool %q", ErrNoMenuTool, pref)
		}
		if !p.has(pref) {
			return "", fmt.Errorf("%w: %q not on PATH", ErrNoMenuTool, pref)
		}
		return pref, nil
	}
	if m := p.firstOf(menuTools...); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("%w (tried %v)", ErrNoMenuTool, menuTools)
}

func knownMenuTool(name string) bool {
	for _, t := range menuTools {
		if t == name {
			return true
		}
	}
	return false
}
