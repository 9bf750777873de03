// Package main provides the CLI entry point for porteurbars.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/softprops/porteurbars/internal/config"
	"github.com/softprops/porteurbars/internal/conflict"
	"github.com/softprops/porteurbars/internal/project"
	"github.com/softprops/porteurbars/internal/prompt"
	"github.com/softprops/porteurbars/internal/resolve"
	"github.com/softprops/porteurbars/internal/state"
	tmpl "github.com/softprops/porteurbars/internal/template"
	"github.com/softprops/porteurbars/internal/tui"
)

var version = "dev"

type options struct {
	configPath string
	yes        bool
	keep       bool
	base       string
	dryRun     bool
	verbose    bool
	noHistory  bool
}

func main() {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "porteurbars <template> [target]",
		Version: version,
		Short:   "Apply a project template to a directory",
		Long: heredoc.Doc(`
			porteurbars renders a project template into a target directory.

			A template is a directory holding a default.env file of name=value
			pairs and a template/ tree. Every path and every file under template/
			is rendered against the resolved values and written to the target,
			which defaults to the current directory.

			Values come from the environment when a variable of the same name is
			set, otherwise you are asked for them. Pass --yes to take every
			default without asking.

			When a target file already exists with different content, a diff is
			shown and you choose whether to keep it or replace it.
		`),
		Example: heredoc.Doc(`
			$ porteurbars ./templates/service ./my-service
			$ porteurbars --yes file:///srv/templates/lib
			$ porteurbars --base go ./templates ./tool
		`),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the app config (default "+config.AppConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Accept every default value without prompting")
	rootCmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "Keep existing files that differ without prompting")
	rootCmd.Flags().StringVarP(&opts.base, "base", "b", "", "Subdirectory of the template source holding the template")
	rootCmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would be done without making changes")
	rootCmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this apply in the history")

	rootCmd.AddCommand(newInitCmd(opts), newHistoryCmd(opts))

	return rootCmd
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default app configuration",
		Long: heredoc.Doc(`
			Write an app configuration file with the built-in defaults.

			The file lives under your XDG config directory unless --config is given.
			An existing file is left alone unless --force is passed.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.appConfigPath()

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("app config already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveAppConfig(path, config.Default()); err != nil {
				return fmt.Errorf("saving app config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "App configuration saved to %s\n", path)

			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing app config")

	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		limit int
		prune int
	)

	cmd := &cobra.Command{
		Use:   "history [apply-id]",
		Short: "Show recorded applies",
		Long: heredoc.Doc(`
			List recent template applies, newest first.

			With an apply id, list every file written or skipped by that apply
			along with its outcome.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAppConfig(opts.appConfigPath())
			if err != nil {
				return err
			}

			store, err := state.Open(cfg.ResolvedHistoryPath())
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			out := cmd.OutOrStdout()

			if prune > 0 {
				if err := store.PruneHistory(prune); err != nil {
					return err
				}
				fmt.Fprintf(out, "Kept the %d most recent applies\n", prune)

				return nil
			}

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid apply id %q: %w", args[0], err)
				}

				return printApply(out, store, id)
			}

			return printApplies(out, store, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of applies to list")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the N most recent applies")

	return cmd
}

func (o *options) appConfigPath() string {
	if o.configPath != "" {
		return config.ExpandPath(o.configPath)
	}

	return config.AppConfigPath()
}

func runApply(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := config.LoadAppConfig(opts.appConfigPath())
	if err != nil {
		return err
	}

	acceptDefaults := cfg.AcceptDefaults
	if cmd.Flags().Changed("yes") {
		acceptDefaults = opts.yes
	}
	keepExisting := cfg.KeepExisting
	if cmd.Flags().Changed("keep") {
		keepExisting = opts.keep
	}

	root, err := project.ParseSource(args[0])
	if err != nil {
		return err
	}
	target := "."
	if len(args) == 2 {
		target = args[1]
	}

	t := project.NewTemplate(root)
	if opts.base != "" {
		t = t.WithBase(opts.base)
	}

	engine, err := tmpl.NewEngine()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	applier := project.New(engine, resolve.New(nil, p), conflict.NewResolver(out, p)).
		WithLogger(newLogger(cmd.ErrOrStderr(), opts.verbose))
	applier.DryRun = opts.dryRun

	if cfg.History && !opts.noHistory && !opts.dryRun {
		store, err := state.Open(cfg.ResolvedHistoryPath())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open apply history: %v\n", err)
		} else {
			defer store.Close() //nolint:errcheck // best-effort cleanup
			applier = applier.WithRecorder(store)
		}
	}

	if opts.dryRun {
		fmt.Fprintln(out, "=== DRY RUN MODE ===")
	}

	return runWithCancellation(func(ctx context.Context) error {
		summary, err := applier.Apply(ctx, t, target, project.Options{
			AcceptDefaults: acceptDefaults,
			KeepExisting:   keepExisting,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Applied %s to %s: %s\n", t.Dir(), target, summary)

		return nil
	})
}

// newLogger returns a text logger on w, at debug level when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPrompter picks the text-input prompter for terminals and falls back to
// line prompts for anything else.
func newPrompter(in io.Reader, out io.Writer) prompt.Prompter {
	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if inOK && outOK {
		return tui.NewPrompter(inFile, outFile)
	}

	return prompt.NewLinePrompter(in, out)
}

func printApplies(out io.Writer, store *state.Store, limit int) error {
	records, err := store.ListApplies(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No applies recorded")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(out, "%d\t%s\t%s -> %s\n",
			r.ID, r.AppliedAt.Local().Format("2006-01-02 15:04:05"), r.TemplateRoot, r.TargetRoot)
	}

	return nil
}

func printApply(out io.Writer, store *state.Store, id int64) error {
	r, err := store.GetApply(id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no apply with id %d", id)
	}

	fmt.Fprintf(out, "%s -> %s (%s)\n",
		r.TemplateRoot, r.TargetRoot, r.AppliedAt.Local().Format("2006-01-02 15:04:05"))

	files, err := store.ListFiles(id)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintf(out, "  %-12s %s\n", f.Outcome, f.Path)
	}

	return nil
}

// runWithCancellation runs a context-aware function with signal-based cancellation.
// It sets up SIGINT/SIGTERM handling and cancels the context when a signal is received.
func runWithCancellation(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nOperation canceled by user")
			cancel()
		case <-ctx.Done():
		}
	}()

	return fn(ctx)
}
