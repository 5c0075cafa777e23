package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/service"
)

func newStreakCommand(opts *RootOptions) *cobra.Command {
	var day, taskID string
	cmd := &cobra.Command{
		Use:   "streak <account>",
		Short: "Show the pair streak and reward progress",
		Long: `Show the shared streak of the account's pair and how far it is from the
pair's reward. With --task the streak of a single task is shown instead;
the task must belong to the account's pair.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				when := a.clock.Today()
				if day != "" {
					if when, err = model.ParseDay(day, when.Location()); err != nil {
						return err
					}
				}

				if taskID != "" {
					tp, err := a.streaks.TaskProgress(cmd.Context(), account, taskID, when)
					if err != nil {
						return err
					}
					text := fmt.Sprintf("task %s: %d day streak", tp.TaskID, tp.Streak)
					if tp.Status != nil {
						text += fmt.Sprintf(", %d of %d", tp.Target-tp.Status.Remaining, tp.Target)
					}
					return out.Print(tp, text)
				}

				p, err := a.streaks.ProgressOn(cmd.Context(), account, when)
				if err != nil {
					return err
				}
				return out.Print(p, formatProgress(p))
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "evaluate as of this day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&taskID, "task", "", "show the streak of one task")
	return cmd
}

func formatProgress(p service.Progress) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pair %s (%s, %s) on %s\n", p.PairID, p.Members[0], p.Members[1], p.Day)
	fmt.Fprintf(&sb, "streak: %d (%s)\n", p.Streak, p.Policy)
	gift := p.Reward.Gift
	if gift == "" {
		gift = "reward"
	}
	if p.Status.Unlocked {
		fmt.Fprintf(&sb, "%s: unlocked (goal %d)", gift, p.Reward.DaysRequired)
	} else {
		fmt.Fprintf(&sb, "%s: %d more (goal %d)", gift, p.Status.Remaining, p.Reward.DaysRequired)
	}
	return sb.String()
}

func newRewardCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Configure the streak reward of a pair",
	}

	var days int
	var gift string
	set := &cobra.Command{
		Use:   "set <account>",
		Short: "Set the reward goal of the account's pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				pair := pairing.PairOf(account)
				cfg, err := a.rewards.Configure(cmd.Context(), pair, service.RewardInput{DaysRequired: days, Gift: gift})
				if err != nil {
					return err
				}
				return out.Print(cfg, fmt.Sprintf("pair %s: %q after %d days", pair, cfg.Gift, cfg.DaysRequired))
			})
		},
	}
	set.Flags().IntVar(&days, "days", 0, "consecutive days required")
	set.Flags().StringVar(&gift, "gift", "", "what the pair gets")
	_ = set.MarkFlagRequired("days")

	show := &cobra.Command{
		Use:   "show <account>",
		Short: "Show the reward goal of the account's pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				pair := pairing.PairOf(account)
				cfg, configured := a.rewards.Get(cmd.Context(), pair)
				text := fmt.Sprintf("pair %s: %q after %d days", pair, cfg.Gift, cfg.DaysRequired)
				if !configured {
					text += " (default)"
				}
				data := map[string]any{"pair_id": pair, "reward": cfg, "configured": configured}
				return out.Print(data, text)
			})
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}
