// Package commands implements the CLI commands for progcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/progcache/internal/app"
	"go.trai.ch/progcache/internal/build"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for progcache.
type CLI struct {
	app     Application
	logger  any
	rootCmd *cobra.Command
	flags   globalFlags
}

// Application represents the application logic interface.
type Application interface {
	Analyze(ctx context.Context, opts app.Options) (*app.Report, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
}

// logConfigurer is implemented by loggers whose format and level can change at runtime.
type logConfigurer interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

type globalFlags struct {
	project        string
	maxPrograms    int
	pinnedPrograms int
	workers        int
	json           bool
	verbose        bool
	stats          bool
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogger lets the CLI apply --json and --verbose to logger when it supports them.
func WithLogger(logger any) Option {
	return func(c *CLI) {
		c.logger = logger
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "progcache",
		Short:         "Incremental program cache for TypeScript and JavaScript projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.flags.project, "project", "p", ".", "Project descriptor or a directory to search upward from")
	flags.IntVar(&c.flags.maxPrograms, "max-programs", domain.DefaultMaxPrograms, "Maximum cached programs per worker")
	flags.IntVar(&c.flags.pinnedPrograms, "pinned-programs", domain.DefaultPinnedPrograms,
		"Cached programs per worker kept in memory regardless of GC pressure")
	flags.IntVarP(&c.flags.workers, "workers", "w", 0, "Number of cache workers (0 picks one per project)")
	flags.BoolVar(&c.flags.json, "json", false, "Write reports and logs as JSON")
	flags.BoolVarP(&c.flags.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.flags.stats, "stats", false, "Append cache statistics to every report")

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if c.flags.maxPrograms < 1 {
			return zerr.With(zerr.New("--max-programs must be at least 1"), "value", c.flags.maxPrograms)
		}
		if c.flags.pinnedPrograms < 1 {
			return zerr.With(zerr.New("--pinned-programs must be at least 1"), "value", c.flags.pinnedPrograms)
		}
		if l, ok := c.logger.(logConfigurer); ok {
			l.SetJSON(c.flags.json)
			l.SetVerbose(c.flags.verbose)
		}
		return nil
	}

	rootCmd.AddCommand(c.newAnalyzeCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// options builds the analysis options shared by every command.
func (c *CLI) options(files []string) app.Options {
	return app.Options{
		Project: c.flags.project,
		Files:   files,
		Cache: domain.CacheConfig{
			MaxSize:    c.flags.maxPrograms,
			PinnedSize: min(c.flags.pinnedPrograms, c.flags.maxPrograms),
		},
		Workers: c.flags.workers,
		JSON:    c.flags.json,
		Stats:   c.flags.stats,
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
