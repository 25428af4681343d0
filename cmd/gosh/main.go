package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gosh/internal/config"
	"gosh/internal/evaluator"
	"gosh/internal/history"
	"gosh/internal/logging"
	"gosh/internal/session"
	"gosh/internal/terminal"
	"gosh/internal/usage"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	envPath     string
	historyFile string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gosh",
	Short: "gosh - an interactive Go shell",
	Long: `gosh is an interactive Go shell with a raw-mode line editor.

Lines are evaluated by an embedded Go interpreter. The editor supports
history navigation, reverse incremental search (Ctrl+R), tab completion of
names and selectors, and "<expr>?" introspection.

Run without arguments to start a session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envPath); err != nil {
			return err
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if historyFile != "" {
			cfg.History.Path = historyFile
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", path, err)
		}

		if err := logging.Initialize(logging.Config{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.LogPath(),
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Get(logging.CategoryBoot).Debug("config loaded from %s", path)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to the log file")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.gosh/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Environment file loaded before config overrides")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "History file (default: ~/.gosh_history)")

	historyListCmd.Flags().IntVarP(&historyLimit, "number", "n", 0, "Show only the last N entries")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClearCmd)

	rootCmd.AddCommand(historyCmd)
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "Discard all recorded statistics")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runShell starts an interactive session on stdin/stdout.
func runShell(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Get(logging.CategoryBoot).Info("received %s, ending session", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fd := int(os.Stdin.Fd())
	input, err := terminal.OpenInput(os.Stdin)
	if err != nil {
		return err
	}

	var sess *session.Session
	eval, err := evaluator.New(evaluator.Options{
		Stdout:       terminal.NewCRLFWriter(os.Stdout),
		Unrestricted: cfg.Evaluator.Unrestricted,
		Bindings: []evaluator.Binding{
			{
				Name:  "quit",
				Value: func() { cancel() },
				Doc:   "quit ends the shell session.",
			},
			{
				Name:  "history",
				Value: func() []string { return sess.HistoryEntries() },
				Doc:   "history returns the lines recorded in this session, oldest first.",
			},
		},
	})
	if err != nil {
		input.Close()
		return err
	}

	var tracker *usage.Tracker
	if cfg.Usage.Enabled {
		tracker, err = usage.NewTracker(cfg.UsagePath())
		if err != nil {
			logging.Get(logging.CategoryBoot).Warn("usage statistics disabled: %v", err)
			tracker = nil
		}
	}

	sess, err = session.New(session.Options{
		Input:         input,
		Terminal:      terminal.NewANSI(os.Stdout),
		RawMode:       terminal.NewRawMode(fd),
		History:       history.File{Path: cfg.HistoryPath(), MaxEntries: cfg.History.MaxEntries},
		Evaluator:     eval,
		Namespace:     eval,
		Rewrites:      cfg.Preprocess.Rules,
		AppendHistory: cfg.History.Append,
		TabWidth:      cfg.Editor.TabWidth,
		EvalTimeout:   cfg.GetEvalTimeout(),
		Width:         func() int { return terminal.Width(fd) },
		Usage:         tracker,
	})
	if err != nil {
		input.Close()
		return err
	}
	return sess.Run(ctx)
}
