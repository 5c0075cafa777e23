package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/service"
)

// TaskView is a task with its state on the reported day.
type TaskView struct {
	model.Task
	DoneToday bool `json:"done_today"`
}

type sendOptions struct {
	title          string
	description    string
	start          string
	target         int
	pledgeAmount   float64
	pledgeCurrency string
	pledgeNote     string
}

func newTaskCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Send, list, check off and reset tasks",
	}
	cmd.AddCommand(newTaskSendCommand(opts))
	cmd.AddCommand(newTaskListCommand(opts))
	cmd.AddCommand(newTaskDoneCommand(opts))
	cmd.AddCommand(newTaskResetCommand(opts))
	return cmd
}

func newTaskSendCommand(opts *RootOptions) *cobra.Command {
	so := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send <from-account>",
		Short: "Send a task to the partner of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				sender, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				input := service.TaskInput{
					PairID:      pairing.PairOf(sender),
					Sender:      sender,
					Recipient:   pairing.Partner(sender),
					Title:       so.title,
					Description: so.description,
					StartDate:   so.start,
					TargetDays:  so.target,
				}
				if so.pledgeAmount != 0 || so.pledgeCurrency != "" {
					input.Pledge = &model.Pledge{Amount: so.pledgeAmount, Currency: so.pledgeCurrency, Note: so.pledgeNote}
				}
				task, err := a.tasks.CreateTask(cmd.Context(), input)
				if err != nil {
					return err
				}
				return out.Print(task, fmt.Sprintf("created %s: %s -> %s %q", task.ID, task.Sender, task.Recipient, task.Title))
			})
		},
	}
	cmd.Flags().StringVarP(&so.title, "title", "t", "", "task title")
	cmd.Flags().StringVar(&so.description, "description", "", "longer description")
	cmd.Flags().StringVar(&so.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&so.target, "target", 0, "target number of days")
	cmd.Flags().Float64Var(&so.pledgeAmount, "pledge-amount", 0, "pledged amount")
	cmd.Flags().StringVar(&so.pledgeCurrency, "pledge-currency", "", "pledge currency")
	cmd.Flags().StringVar(&so.pledgeNote, "pledge-note", "", "pledge note")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCommand(opts *RootOptions) *cobra.Command {
	var sent, pair bool
	cmd := &cobra.Command{
		Use:   "list <account>",
		Short: "List tasks received by an account",
		Long: `List tasks received by an account, newest first.

--sent lists the tasks the account sent instead, --pair lists every task of
the account's pair.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				var tasks []model.Task
				switch {
				case pair:
					tasks = a.tasks.TasksForPair(ctx, pairing.PairOf(account))
				case sent:
					tasks = a.tasks.TasksSentBy(ctx, account)
				default:
					tasks = a.tasks.TasksReceivedBy(ctx, account)
				}

				today := a.clock.Today()
				views := make([]TaskView, 0, len(tasks))
				var sb strings.Builder
				for _, t := range tasks {
					views = append(views, TaskView{Task: t, DoneToday: t.IsDone(today)})
					mark := " "
					if t.IsDone(today) {
						mark = "x"
					}
					fmt.Fprintf(&sb, "[%s] %s  %s -> %s  %s\n", mark, t.ID, t.Sender, t.Recipient, t.Title)
				}
				if len(tasks) == 0 {
					sb.WriteString("no tasks\n")
				}
				return out.Print(views, strings.TrimRight(sb.String(), "\n"))
			})
		},
	}
	cmd.Flags().BoolVar(&sent, "sent", false, "list tasks sent by the account")
	cmd.Flags().BoolVar(&pair, "pair", false, "list every task of the account's pair")
	cmd.MarkFlagsMutuallyExclusive("sent", "pair")
	return cmd
}

func newTaskDoneCommand(opts *RootOptions) *cobra.Command {
	var day string
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <account> <task-id>",
		Short: "Check off a received task for a day",
		Args:  cobra.ExactArgs(2),
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
				task, err := a.tasks.SetCompletion(cmd.Context(), account, args[1], when, !undo)
				if err != nil {
					return err
				}
				state := "done"
				if undo {
					state = "not done"
				}
				return out.Print(task, fmt.Sprintf("%s %s on %s", task.ID, state, model.DayKey(when)))
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to record (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&undo, "undo", false, "clear the day instead of checking it off")
	return cmd
}

func newTaskResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset <account>",
		Short: "Delete every task of the account's pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				account, err := parseAccountArg(args[0])
				if err != nil {
					return err
				}
				if !yes {
					return NewExitError(ExitCommandError, "refusing to delete tasks without --yes")
				}
				pair := pairing.PairOf(account)
				removed, err := a.tasks.ResetPair(cmd.Context(), pair)
				if err != nil {
					return err
				}
				data := map[string]any{"pair_id": pair, "removed": removed}
				return out.Print(data, fmt.Sprintf("removed %d tasks of pair %s", removed, pair))
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
