package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Store   string // "json" | "sqlite" | "memory", empty keeps the configured driver
	Path    string
	DB      string
	Policy  string
	Format  string // "json" | "text"
	Verbose bool

	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for pairctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairctl",
		Short: "pairctl - manage paired accounts, tasks and streaks",
		Long: `Administer the pair-tasks document store.

Every command reads the same store the Telegram bot uses. Settings come from
the environment (STORE_DRIVER, DATA_PATH, DATABASE_URL, STREAK_POLICY, ...)
and the flags below override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "store driver (json|sqlite|memory)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "JSON document path for the json store")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path for the sqlite store")
	cmd.PersistentFlags().StringVar(&opts.Policy, "policy", "", "streak policy (lenient|strict)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newPairCommand(opts))
	cmd.AddCommand(newTaskCommand(opts))
	cmd.AddCommand(newStreakCommand(opts))
	cmd.AddCommand(newRewardCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}
