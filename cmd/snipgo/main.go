// snipgo: fuzzy snippet picker that types, copies, or pastes file contents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := newRootCmd()
	root.AddCommand(
		newVersionCmd(),
		newHoldClipCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "snipgo",
		Short: "Pick a snippet file and type, copy, or paste it",
		Long: `snipgo scans a directory of snippet files, shows their names in a fuzzy
menu (wofi, bemenu, rofi, dmenu, or fzf — whichever is available), and acts on
the chosen file's content: simulate keystrokes into the focused window, copy
to the clipboard, or copy and send a paste keystroke.

Inside menus with custom-binding support, ctrl-t forces typing, ctrl-y forces
copying, and ctrl-p forces pasting; plain enter uses the default action.
Dismissing the menu exits quietly.

Config file search order (first found wins):
  /etc/snipgo/snipgo.toml
  $HOME/.config/snipgo/snipgo.toml
  path supplied via --config

All flags can be set via SNIPGO_<FLAG> env vars or config-file keys, e.g.
SNIPGO_DIR, SNIPGO_PROMPT, SNIPGO_PASTE_KEY.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(_ *cobra.Command, _ []string) error { return run(v) },
	}

	f := cmd.Flags()
	f.Bool("type", false, "default action: simulate typing the snippet (the default)")
	f.Bool("clip", false, "default action: copy the snippet to the clipboard")
	f.Bool("paste", false, "default action: copy, then send a paste keystroke")
	cmd.MarkFlagsMutuallyExclusive("type", "clip", "paste")

	f.String("dir", defaultSnippetDir(), "snippet root directory")
	f.String("prompt", "snippet", "menu prompt text")
	f.Bool("text-only", false, "only list files with text-like extensions")
	f.Bool("no-follow", false, "do not follow symlinks outside the snippet root")
	f.Bool("alpha", false, "order entries lexicographically instead of newest-first")
	f.String("menu", "auto", "menu tool: auto|wofi|bemenu|rofi|dmenu|fzf")
	f.String("paste-key", "", "key combo sent for the paste action (default ctrl+shift+v)")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("snipgo %s\n", Version)
		},
	}
}
