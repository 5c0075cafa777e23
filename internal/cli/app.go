package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"pair-tasks/internal/config"
	"pair-tasks/internal/logging"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/repository"
	"pair-tasks/internal/service"
	"pair-tasks/internal/streak"
)

// app is the service graph a single command runs against.
type app struct {
	cfg      config.Config
	clock    service.Clock
	docs     *service.Documents
	tasks    *service.TaskService
	profiles *service.ProfileService
	rewards  *service.RewardService
	streaks  *service.StreakService
	gen      *pairing.Generator
	close    func() error
}

// resolveConfig loads the environment configuration and applies flag overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Store != "" {
		cfg.StoreDriver = strings.ToLower(opts.Store)
	}
	if opts.Path != "" {
		cfg.DataPath = opts.Path
	}
	if opts.DB != "" {
		cfg.DatabaseURL = opts.DB
	}
	if opts.Policy != "" {
		p, err := streak.ParsePolicy(opts.Policy)
		if err != nil {
			return cfg, WrapExitError(ExitCommandError, "--policy", err)
		}
		cfg.StreakPolicy = p
	}
	return cfg, nil
}

func openApp(opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger := logging.New(logOut, level)

	store, closeFn, err := repository.Open(cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	clock := service.Clock{Now: opts.now, Location: cfg.Location}
	return newApp(cfg, clock, store, closeFn, logger), nil
}

func newApp(cfg config.Config, clock service.Clock, store repository.DocumentStore, closeFn func() error, logger *slog.Logger) *app {
	docs := service.NewDocuments(store, logger)
	rewards := service.NewRewardService(docs, cfg.RewardDefaultDays, logger)
	return &app{
		cfg:      cfg,
		clock:    clock,
		docs:     docs,
		tasks:    service.NewTaskService(docs, clock, logger),
		profiles: service.NewProfileService(docs),
		rewards:  rewards,
		streaks:  service.NewStreakService(docs, rewards, clock, cfg.StreakPolicy),
		gen:      pairing.NewGenerator(cfg.AccountMin, cfg.AccountMax, nil),
		close:    closeFn,
	}
}

// withApp opens the store, runs fn and reports its error through the formatter.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(a *app, out *OutputFormatter) error) error {
	out := newFormatter(opts, cmd)
	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return out.Fail(err)
	}
	defer a.close()

	out.VerboseLog("store=%s policy=%s", a.cfg.StoreDriver, a.cfg.StreakPolicy)
	if err := fn(a, out); err != nil {
		return out.Fail(err)
	}
	return nil
}

func parseAccountArg(raw string) (pairing.Account, error) {
	a, err := pairing.ParseAccount(raw)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "account", err)
	}
	return a, nil
}
