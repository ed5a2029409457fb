// Package action executes the chosen action on a normalized snippet payload:
// simulate keystrokes, copy to the clipboard, or copy-then-paste. Backends are
// opaque subprocesses resolved by the session prober; the one in-process path
// is the library clipboard fallback, which is handed to a detached helper so
// the clipboard outlives this run.
package action

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.klb.dev/snipgo/internal/session"
)

// Action is the shared three-way action vocabulary, plus None for "user
// cancelled, do nothing".
type Action string

const (
	None  Action = "none"
	Type  Action = "type"
	Clip  Action = "clip"
	Paste Action = "paste"
)

// DefaultPasteKey is the synthetic keystroke sent for the paste action.
// ctrl+shift+v rather than ctrl+v so terminals paste too.
const DefaultPasteKey = "ctrl+shift+v"

var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrTypingFailed         = errors.New("typing failed")
	ErrClipboardUnavailable = errors.New("clipboard copy failed")
	ErrPasteFailed          = errors.New("paste keystroke failed")
)

// Runner executes backend subprocesses. Detach starts a process that must
// outlive this run (fire-and-detach, never awaited).
type Runner interface {
	Run(name string, args []string, stdin io.Reader) error
	Detach(name string, args []string, stdin io.Reader) error
}

// Executor dispatches one action per run. All fields are set once, before use.
type Executor struct {
	Backends session.Backends
	PasteKey string // key combo for the paste keystroke, e.g. "ctrl+shift+v"
	SelfExec string // path to this binary, for the hold-clip helper
	Run      Runner
}

// Execute performs act on payload. Typing streams the payload directly; the
// clipboard actions first stage it in a temporary file so their backends can
// be re-fed from the same bytes, removed on every exit path.
func (e *Executor) Execute(act Action, payload []byte) error {
	switch act {
	case Type:
		return e.typeOut(payload)
	case Clip, Paste:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, act)
	}

	tmp, err := os.CreateTemp("", "snipgo-*")
	if err != nil {
		return fmt.Errorf("staging payload: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("staging payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("staging payload: %w", err)
	}

	if act == Clip {
		return e.clip(tmp.Name())
	}
	return e.paste(tmp.Name(), payload)
}

// typeOut feeds the payload to the typing backend line by line, with an
// explicit Return key event between lines. Relying on the backend's native
// newline handling types literal linefeeds into some applications.
func (e *Executor) typeOut(payload []byte) error {
	lines := strings.Split(string(payload), "\n")
	for i, line := range lines {
		if line != "" {
			if err := e.typeLine(line); err != nil {
				return fmt.Errorf("%w: %v", ErrTypingFailed, err)
			}
		}
		if i < len(lines)-1 {
			if err := e.pressKey("Return"); err != nil {
				return fmt.Errorf("%w: %v", ErrTypingFailed, err)
			}
		}
	}
	return e.releaseModifiers()
}

func (e *Executor) typeLine(line string) error {
	switch e.Backends.Typer {
	case "wtype":
		return e.Run.Run("wtype", []string{"--", line}, nil)
	case "ydotool":
		return e.Run.Run("ydotool", []string{"type", "--", line}, nil)
	case "xdotool":
		return e.Run.Run("xdotool", []string{"type", "--clearmodifiers", "--delay", "12", "--", line}, nil)
	default:
		return fmt.Errorf("unsupported typing tool %q", e.Backends.Typer)
	}
}

func (e *Executor) pressKey(key string) error {
	switch e.Backends.Typer {
	case "wtype":
		return e.Run.Run("wtype", []string{"-k", key}, nil)
	case "ydotool":
		code, ok := ydotoolKeycodes[strings.ToLower(key)]
		if !ok {
			return fmt.Errorf("no ydotool keycode for %q", key)
		}
		return e.Run.Run("ydotool", []string{"key", fmt.Sprintf("%d:1", code), fmt.Sprintf("%d:0", code)}, nil)
	case "xdotool":
		return e.Run.Run("xdotool", []string{"key", "--clearmodifiers", key}, nil)
	default:
		return fmt.Errorf("unsupported typing tool %q", e.Backends.Typer)
	}
}

// releaseModifiers guards against the stuck-modifier failure mode of
// per-keystroke injection backends: a held ctrl/shift/alt/super from the
// launching hotkey can be left "pressed" after synthetic input.
func (e *Executor) releaseModifiers() error {
	switch e.Backends.Typer {
	case "xdotool":
		return e.Run.Run("xdotool", []string{"keyup", "ctrl", "shift", "alt", "super"}, nil)
	case "ydotool":
		args := []string{"key"}
		for _, mod := range []string{"ctrl", "shift", "alt", "super"} {
			args = append(args, fmt.Sprintf("%d:0", ydotoolKeycodes[mod]))
		}
		return e.Run.Run("ydotool", args, nil)
	}
	// wtype sends self-contained events; nothing to release.
	return nil
}

// clip feeds the staged payload to the clipboard backend. External tools fork
// themselves to keep the clipboard served; the library fallback cannot, so it
// runs as a detached copy of this binary instead.
func (e *Executor) clip(payloadPath string) error {
	f, err := os.Open(payloadPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	defer f.Close()

	switch e.Backends.Clip {
	case "wl-copy":
		err = e.Run.Run("wl-copy", nil, f)
	case "xclip":
		err = e.Run.Run("xclip", []string{"-selection", "clipboard"}, f)
	case "xsel":
		err = e.Run.Run("xsel", []string{"--clipboard", "--input"}, f)
	case session.ClipInternal:
		err = e.Run.Detach(e.SelfExec, []string{"hold-clip"}, f)
	default:
		err = fmt.Errorf("unsupported clipboard tool %q", e.Backends.Clip)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// paste copies the payload, then sends a synthetic paste keystroke. If the
// copy fails the full typing path runs instead with the same payload — a
// bound hotkey should always produce something, never silently drop the
// action.
func (e *Executor) paste(payloadPath string, payload []byte) error {
	if err := e.clip(payloadPath); err != nil {
		slog.Warn("clipboard copy failed, falling back to typing", "err", err)
		return e.typeOut(payload)
	}
	combo := e.PasteKey
	if combo == "" {
		combo = DefaultPasteKey
	}
	if err := e.sendCombo(combo); err != nil {
		return fmt.Errorf("%w: %v", ErrPasteFailed, err)
	}
	return nil
}

// sendCombo sends a modifier+key chord like "ctrl+shift+v".
func (e *Executor) sendCombo(combo string) error {
	parts := strings.Split(strings.ToLower(combo), "+")
	mods, key := parts[:len(parts)-1], parts[len(parts)-1]

	switch e.Backends.Typer {
	case "wtype":
		var args []string
		for _, m := range mods {
			args = append(args, "-M", m)
		}
		args = append(args, "-k", key)
		for i := len(mods) - 1; i >= 0; i-- {
			args = append(args, "-m", mods[i])
		}
		return e.Run.Run("wtype", args, nil)
	case "ydotool":
		var press, release []string
		for _, m := range append(mods, key) {
			code, ok := ydotoolKeycodes[m]
			if !ok {
				return fmt.Errorf("no ydotool keycode for %q", m)
			}
			press = append(press, fmt.Sprintf("%d:1", code))
			release = append([]string{fmt.Sprintf("%d:0", code)}, release...)
		}
		return e.Run.Run("ydotool", append(append([]string{"key"}, press...), release...), nil)
	case "xdotool":
		return e.Run.Run("xdotool", []string{"key", "--clearmodifiers", combo}, nil)
	default:
		return fmt.Errorf("unsupported typing tool %q", e.Backends.Typer)
	}
}

// ydotool drives uinput directly and only understands Linux input event
// codes.
var ydotoolKeycodes = map[string]int{
	"ctrl":   29,
	"shift":  42,
	"alt":    56,
	"super":  125,
	"return": 28,
	"enter":  28,
	"tab":    15,
	"insert": 110,
	"v":      47,
}
