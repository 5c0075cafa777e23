package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pair-tasks/internal/service"
)

func newProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read or update the mood and wish of an account",
	}

	var mood, want string
	set := &cobra.Command{
		Use:   "set <account>",
		Short: "Update mood and/or wish; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				p, err := a.profiles.Update(cmd.Context(), account, service.ProfileInput{Mood: mood, Want: want})
				if err != nil {
					return err
				}
				return out.Print(p, fmt.Sprintf("%s: mood=%q want=%q", account, p.Mood, p.Want))
			})
		},
	}
	set.Flags().StringVar(&mood, "mood", "", "current mood")
	set.Flags().StringVar(&want, "want", "", "what the account wishes for")

	show := &cobra.Command{
		Use:   "show <account>",
		Short: "Show the profile of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				p := a.profiles.Get(cmd.Context(), account)
				return out.Print(p, fmt.Sprintf("%s: mood=%q want=%q", account, p.Mood, p.Want))
			})
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}
