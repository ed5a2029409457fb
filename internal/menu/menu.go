// Package menu presents the snippet entries through an interactive selector
// backend and normalizes its answer into one (action, entry) result.
//
// The backends signal "use a non-default action" through incompatible
// primitives: rofi reports custom key bindings as distinct exit codes, fzf
// prints the pressed key as a sentinel first output line, and wofi, bemenu and
// dmenu support no custom bindings at all. Each backend is one case of a
// closed switch here; callers never see the native signal space.
package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"go.klb.dev/snipgo/internal/action"
)

// Uniform bindings where the backend supports custom keys:
// ctrl-t forces typing, ctrl-y forces clipboard copy, ctrl-p forces paste.
// Plain confirmation uses the run's default action.

// Selection is the single normalized result of one menu interaction.
// A cancelled menu yields the zero value: (none, "").
type Selection struct {
	Action action.Action
	Entry  string
}

// Cancelled reports whether the user dismissed the menu without choosing.
func (s Selection) Cancelled() bool {
	return s.Action == action.None || s.Action == "" || s.Entry == ""
}

// Runner executes one menu subprocess: entries on stdin, selection on stdout,
// exit code as reported by the backend. err is non-nil only when the backend
// could not run at all; a non-zero exit is part of the signal space, not an
// error.
type Runner interface {
	Run(name string, args []string, stdin string) (stdout string, exitCode int, err error)
}

// Select presents entries (in the given order — no re-sorting) to the backend
// named by tool and returns the normalized result. def is the action used on
// plain confirmation. A result naming anything other than a presented entry is
// treated as a cancel.
func Select(r Runner, tool string, entries []string, prompt string, def action.Action) (Selection, error) {
	input := strings.Join(entries, "\n") + "\n"

	var sel Selection
	var err error
	switch tool {
	case "wofi":
		sel, err = plainSelect(r, def, "wofi", []string{"--dmenu", "--insensitive", "--prompt", prompt}, input)
	case "bemenu":
		sel, err = plainSelect(r, def, "bemenu", []string{"-i", "-l", "20", "-p", prompt}, input)
	case "dmenu":
		sel, err = plainSelect(r, def, "dmenu", []string{"-i", "-l", "20", "-p", prompt}, input)
	case "rofi":
		sel, err = rofiSelect(r, def, prompt, input)
	case "fzf":
		sel, err = fzfSelect(r, def, prompt, input)
	default:
		return Selection{}, fmt.Errorf("unsupported menu tool %q", tool)
	}
	if err != nil || sel.Cancelled() {
		return sel, err
	}
	// dmenu and rofi print the typed query verbatim when it matches no entry,
	// so backend output is only trusted when it names an entry we offered.
	// Anything else would be handed to the repository as a path.
	if !slices.Contains(entries, sel.Entry) {
		slog.Debug("menu printed a line that was never offered", "line", sel.Entry)
		return cancelled(), nil
	}
	return sel, nil
}

// plainSelect handles backends with no custom-binding support: exit 0 with a
// selected line means the default action, anything else is a cancel.
func plainSelect(r Runner, def action.Action, name string, args []string, input string) (Selection, error) {
	out, code, err := r.Run(name, args, input)
	if err != nil {
		return Selection{}, fmt.Errorf("%s: %w", name, err)
	}
	entry := firstLine(out)
	if code != 0 || entry == "" {
		return cancelled(), nil
	}
	return Selection{Action: def, Entry: entry}, nil
}

// rofiSelect maps rofi's exit-code convention: kb-custom-1/2/3 surface as
// exit codes 10/11/12, cancel as exit 1.
func rofiSelect(r Runner, def action.Action, prompt, input string) (Selection, error) {
	args := []string{
		"-dmenu", "-i", "-p", prompt,
		"-kb-custom-1", "Control+t",
		"-kb-custom-2", "Control+y",
		"-kb-custom-3", "Control+p",
	}
	out, code, err := r.Run("rofi", args, input)
	if err != nil {
		return Selection{}, fmt.Errorf("rofi: %w", err)
	}
	entry := firstLine(out)
	if entry == "" {
		return cancelled(), nil
	}
	switch code {
	case 0:
		return Selection{Action: def, Entry: entry}, nil
	case 10:
		return Selection{Action: action.Type, Entry: entry}, nil
	case 11:
		return Selection{Action: action.Clip, Entry: entry}, nil
	case 12:
		return Selection{Action: action.Paste, Entry: entry}, nil
	default:
		return cancelled(), nil
	}
}

// fzfSelect maps fzf's sentinel-line convention: with --expect the first
// output line names the key that confirmed the selection (empty for plain
// enter) and the second line is the selection. Exit 130 is esc/ctrl-c, exit 1
// is "no match"; both cancel.
func fzfSelect(r Runner, def action.Action, prompt, input string) (Selection, error) {
	args := []string{
		"--prompt", prompt + "> ",
		"--expect", "ctrl-t,ctrl-y,ctrl-p",
		"--no-multi",
	}
	out, code, err := r.Run("fzf", args, input)
	if err != nil {
		return Selection{}, fmt.Errorf("fzf: %w", err)
	}
	if code != 0 {
		return cancelled(), nil
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 2 || lines[1] == "" {
		return cancelled(), nil
	}
	sel := Selection{Action: def, Entry: lines[1]}
	switch lines[0] {
	case "ctrl-t":
		sel.Action = action.Type
	case "ctrl-y":
		sel.Action = action.Clip
	case "ctrl-p":
		sel.Action = action.Paste
	}
	return sel, nil
}

func cancelled() Selection {
	return Selection{Action: action.None}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "\r")
}

// ExecRunner runs the real menu subprocess. The backend draws its own UI
// (a layer-shell window, an X window, or the controlling terminal for fzf),
// so stderr is passed through and only stdout is captured.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args []string, stdin string) (string, int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return "", 0, err
	}
	return string(out), 0, nil
}
