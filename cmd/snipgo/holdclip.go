package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
)

// newHoldClipCmd is the detached helper behind the library clipboard
// fallback. golang.design/x/clipboard serves clipboard reads only while the
// writing process lives, so the main run re-execs itself as "snipgo
// hold-clip" in its own session and moves on; this process blocks until
// another application takes clipboard ownership, then exits.
func newHoldClipCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "hold-clip",
		Hidden: true,
		Short:  "Hold stdin on the clipboard until it is overwritten (internal)",
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading payload: %w", err)
			}
			if err := clipboard.Init(); err != nil {
				return fmt.Errorf("clipboard init: %w", err)
			}
			<-clipboard.Write(clipboard.FmtText, data)
			return nil
		},
	}
}
