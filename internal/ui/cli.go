package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/csvio"
	"github.com/javiermolinar/aula/internal/db"
	"github.com/javiermolinar/aula/internal/generator"
	"github.com/javiermolinar/aula/internal/logging"
	"github.com/javiermolinar/aula/internal/scheduler"
	"github.com/javiermolinar/aula/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// ErrConflictsFound is returned by commands that fail when the timetable has conflicts.
var ErrConflictsFound = errors.New("timetable has conflicts")

// DebugLogFile receives debug logs while the TUI owns the terminal.
const DebugLogFile = "aula-debug.log"

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command

	// Global flags
	debug    bool
	noColor  bool
	from     string // CSV file to load instead of generating
	seed     uint64
	sessions int

	repo    *db.SQLite
	sched   *scheduler.Scheduler
	log     *slog.Logger
	logFile *os.File
}

// NewApp creates a new CLI application with the given config.
// Storage is opened lazily by the commands that need it.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "aula",
		Short: "A university timetable with conflict detection",
		Long: `Aula keeps a weekly university timetable and flags room and instructor
double-bookings as soon as they appear.

Without a subcommand it opens the interactive week grid. The timetable is
loaded from --from when given, from storage when it already holds sessions,
or generated from the mock catalogue otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setupLogging(io.Discard, true); err != nil {
				return err
			}
			sched, err := a.ensureScheduler(cmd)
			if err != nil {
				return err
			}
			return tui.Run(sched, a.config)
		},
	}

	flags := a.root.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging (the TUI logs to "+DebugLogFile+")")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable color output")
	flags.StringVar(&a.from, "from", "", "Load the timetable from a CSV file")
	flags.Uint64Var(&a.seed, "seed", 0, "Mock generator seed (default from config)")
	flags.IntVar(&a.sessions, "sessions", 0, "Number of mock sessions (default from config)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.conflictsCmd())
	a.root.AddCommand(a.workloadCmd())
	a.root.AddCommand(a.reportCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.removeCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aula %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application with ctx available to every command.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output, for tests.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

// SetInput redirects command input, for tests.
func (a *App) SetInput(in io.Reader) {
	a.root.SetIn(in)
}

// Close releases the repository and the debug log file.
func (a *App) Close() error {
	var errs []error
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
		a.repo = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

// setupLogging installs the process logger. The TUI cannot share the terminal with log
// output, so it logs to DebugLogFile with --debug and nowhere otherwise.
func (a *App) setupLogging(stderr io.Writer, forTUI bool) error {
	if a.log != nil {
		return nil
	}
	level := a.config.Log.Level
	if a.debug {
		level = "debug"
	}

	w := stderr
	if forTUI && a.debug {
		f, err := os.OpenFile(DebugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		a.logFile = f
		w = f
	}

	logger, err := logging.Setup(w, level, a.config.Log.Format)
	if err != nil {
		return err
	}
	a.log = logger
	return nil
}

// ensureScheduler opens storage and loads the timetable on first use.
func (a *App) ensureScheduler(cmd *cobra.Command) (*scheduler.Scheduler, error) {
	if a.sched != nil {
		return a.sched, nil
	}
	ctx := commandContext(cmd)
	if err := a.setupLogging(cmd.ErrOrStderr(), false); err != nil {
		return nil, err
	}

	slots, err := a.config.Slots()
	if err != nil {
		return nil, fmt.Errorf("grid settings: %w", err)
	}

	repo, err := db.New(a.config.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	a.repo = repo

	sched := scheduler.New(repo, scheduler.Options{
		Slots:  slots,
		Mode:   a.config.LookupMode(),
		Logger: a.log,
	})
	if err := sched.Refresh(ctx); err != nil {
		return nil, err
	}

	switch {
	case a.from != "":
		path, err := resolvePath(a.from)
		if err != nil {
			return nil, err
		}
		sessions, err := csvio.LoadSessions(path)
		if err != nil {
			return nil, err
		}
		if err := sched.Load(ctx, sessions); err != nil {
			return nil, err
		}
		a.log.Debug("timetable loaded from csv", "path", path, "sessions", len(sessions))

	case len(sched.All()) == 0:
		sessions, err := generator.Generate(a.generatorOptions())
		if err != nil {
			return nil, fmt.Errorf("generating timetable: %w", err)
		}
		if err := sched.Load(ctx, sessions); err != nil {
			return nil, err
		}
		a.log.Debug("timetable generated", "sessions", len(sessions))
	}

	a.sched = sched
	return sched, nil
}

func (a *App) generatorOptions() generator.Options {
	opts := generator.Options{
		Seed:           uint64(a.config.Generator.Seed),
		Sessions:       a.config.Generator.Sessions,
		UnalignedShare: a.config.Generator.UnalignedShare,
	}
	if a.seed != 0 {
		opts.Seed = a.seed
	}
	if a.sessions != 0 {
		opts.Sessions = a.sessions
	}
	if slots, err := a.config.Slots(); err == nil {
		opts.Slots = slots
	}
	return opts
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
