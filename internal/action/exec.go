package action

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
)

// ExecRunner runs backend subprocesses with os/exec.
type ExecRunner struct{}

// Run executes the command, feeding stdin if non-nil, and waits for it.
// On failure the command's combined output is folded into the error.
func (ExecRunner) Run(name string, args []string, stdin io.Reader) error {
	cmd := exec.Command(name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Detach starts the command in its own session and does not wait for it. The
// stdin content is written before the method returns so the child owns a
// complete copy of the payload.
func (ExecRunner) Detach(name string, args []string, stdin io.Reader) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	pipe, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if stdin != nil {
		if _, err := io.Copy(pipe, stdin); err != nil {
			pipe.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := pipe.Close(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Process.Release()
}
