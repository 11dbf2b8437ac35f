package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"vidhub/internal/bridge"
	"vidhub/internal/config"
	"vidhub/internal/log"
	"vidhub/internal/state"
	"vidhub/internal/tui"
	"vidhub/internal/tui/messages"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// opens the gallery.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		cfg     *config.Config
	)
	current := func() *config.Config { return cfg }
	path := func() (string, error) {
		if cfgFile != "" {
			return cfgFile, nil
		}
		return config.DefaultPath()
	}

	rootCmd := &cobra.Command{
		Use:   "vidhub",
		Short: "Import, browse and filter a video collection",
		Long: `
	 _   _ _     _ _           _
	| | | (_) __| | |__  _   _| |__
	| | | | |/ _' | '_ \| | | | '_ \
	 \ \_/ / | (_| | | | | |_| | |_) |
	  \___/|_|\__,_|_| |_|\__,_|_.__/

vidhub imports a folder of videos into a hub and lets you browse it,
narrowing the results with folder, file and exclude filters.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadConfigFile(cfgFile)
			} else {
				cfg, err = config.LoadConfig()
			}
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := path()
			if err != nil {
				p = ""
			}
			return runGallery(cmd.Context(), cfg, p, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/vidhub/config.yaml)")

	rootCmd.AddCommand(newWorkerCmd(current))
	rootCmd.AddCommand(newConfigCmd(current, path))

	return rootCmd
}

func configureLogging(cfg *config.Config, stderr string) {
	opts := []log.Option{log.WithLevel(cfg.Logging.Level), log.WithStderr(stderr)}
	if cfg.Logging.Format == "json" {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Logging.File != "" {
		opts = append(opts, log.WithFile(cfg.Logging.File))
	}
	log.Configure(opts...)
}

func applyLogLevel(cfg *config.Config) {
	log.SetDebug(strings.EqualFold(cfg.Logging.Level, "debug"))
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// workerCommand resolves how to launch the worker. Without a configured
// command the running binary is started again as "vidhub worker".
func workerCommand(cfg *config.Config, explicitConfig string, executable func() (string, error)) (string, []string, error) {
	if cfg.Worker.Command != "" {
		return cfg.Worker.Command, append([]string(nil), cfg.Worker.Args...), nil
	}
	exe, err := executable()
	if err != nil {
		return "", nil, fmt.Errorf("locating vidhub executable: %w", err)
	}
	args := []string{"worker"}
	if explicitConfig != "" {
		args = append(args, "--config", explicitConfig)
	}
	return exe, append(args, cfg.Worker.Args...), nil
}

// workerStderr is where the worker's log lines end up. With a log file the
// worker writes there itself; on a terminal the TUI owns the screen.
func workerStderr(cfg *config.Config) io.Writer {
	if cfg.Logging.File != "" || stderrIsTerminal() {
		return nil
	}
	return os.Stderr
}

func runGallery(ctx context.Context, cfg *config.Config, cfgPath, explicitConfig string) error {
	stderr := "always"
	if stderrIsTerminal() {
		stderr = "never"
	}
	configureLogging(cfg, stderr)
	logger := log.For("main")

	name, args, err := workerCommand(cfg, explicitConfig, os.Executable)
	if err != nil {
		return err
	}
	proc, err := bridge.StartProcess(ctx, workerStderr(cfg), name, args...)
	if err != nil {
		return fmt.Errorf("starting worker: %w", err)
	}

	opts := tui.OptionsFromConfig(cfg)
	if cfg.State.Persist {
		saved, ok, err := state.Load(cfg.State.Path)
		switch {
		case err != nil:
			logger.WithError(err).Warn("Ignoring unreadable session file")
		case ok:
			opts.Saved = &saved
		}
	}

	prog, model := tui.NewProgram(proc, proc.Events(), opts, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfgPath != "" {
		stop, err := config.Watch(cfgPath, func(next *config.Config) {
			applyLogLevel(next)
			prog.Send(messages.ConfigUpdateMsg{Config: next})
		})
		if err != nil {
			logger.WithError(err).Debug("Configuration changes will not be picked up")
		} else {
			defer stop()
		}
	}

	_, runErr := prog.Run()

	if cfg.State.Persist {
		if err := state.Save(cfg.State.Path, model.Saved()); err != nil {
			logger.WithError(err).Warn("Failed to save session")
		}
	}
	if err := proc.Stop(cfg.Worker.StopGrace); err != nil {
		logger.WithError(err).Debug("Worker did not stop cleanly")
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running gallery: %w", runErr)
	}
	return nil
}
