package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/interface/shell"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

// options collects the persistent flags. Set flags override the environment.
type options struct {
	seedPath   string
	seedStrict bool
	verbose    bool
	redis      bool
	redisURL   string
}

// =============================================================================
// ROOT COMMAND - interactive shell
// =============================================================================

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "gradebook",
		Short:         "Academic grade book with GPA ranking",
		Long:          `Manages students, courses and graded registrations in memory and computes credit-weighted GPAs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, true, func(a *app) error {
				return shell.New(a.gb, cmd.InOrStdin(), cmd.OutOrStdout(), a.log).Run(cmd.Context())
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.seedPath, "seed", "", "load students, courses and registrations from a .hcl, .yaml or .yml file")
	flags.BoolVar(&opts.seedStrict, "seed-strict", false, "fail on the first rejected seed record")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&opts.redis, "redis", false, "mirror the ranking into Redis")
	flags.StringVar(&opts.redisURL, "redis-url", "", "Redis URL, e.g. redis://localhost:6379/0 (implies --redis)")

	root.AddCommand(newRankCmd(opts), newSearchCmd(opts), newTranscriptCmd(opts))
	return root
}

// =============================================================================
// ONE-SHOT COMMANDS
// =============================================================================

func newRankCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Print the GPA ranking of the seeded students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, false, func(a *app) error {
				res, err := a.gb.CalculateRanking(cmd.Context())
				if err != nil {
					return err
				}
				shell.NewPresenter(cmd.OutOrStdout()).Ranking(res)
				return nil
			})
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <grade>",
		Short: "List registrations with exactly the given grade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid grade %q: %w", args[0], err)
			}
			return withApp(cmd, opts, false, func(a *app) error {
				res, err := a.gb.SearchByGrade(cmd.Context(), grade)
				if err != nil {
					return err
				}
				shell.NewPresenter(cmd.OutOrStdout()).Matches(res)
				return nil
			})
		},
	}
}

func newTranscriptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <email>",
		Short: "Print a student's transcript and overall GPA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(a *app) error {
				p := shell.NewPresenter(cmd.OutOrStdout())
				res, err := a.gb.GenerateTranscript(cmd.Context(), args[0])
				if errors.Is(err, shared.ErrStudentNotFound) {
					p.Error("Student not found.")
					return errReported
				}
				if err != nil {
					return err
				}
				p.Transcript(res)
				return nil
			})
		},
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// withApp loads configuration, applies flags, builds the app, runs fn and
// closes the app. Interactive runs keep stderr quiet unless --verbose is set.
func withApp(cmd *cobra.Command, opts *options, interactive bool, fn func(*app) error) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log := setupLogger(cfg, cmd.ErrOrStderr())
	if interactive && !opts.verbose && log.Level() < logger.LevelError {
		log = log.WithLevel(logger.LevelError)
	}

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(a)
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed.Path = opts.seedPath
	}
	if flags.Changed("seed-strict") {
		cfg.Seed.Strict = opts.seedStrict
	}
	if opts.verbose {
		cfg.Observability.LogLevel = "debug"
	}
	if flags.Changed("redis") {
		cfg.Redis.Enabled = opts.redis
	}
	if opts.redisURL != "" {
		cfg.Redis.URL = opts.redisURL
		cfg.Redis.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
