package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Ning0612/cptrash/internal/config"
	"github.com/Ning0612/cptrash/internal/logger"
	"github.com/Ning0612/cptrash/internal/ui"
)

// version is the application version, set via ldflags
var version = "dev"

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"url":          "url",
	"username":     "username",
	"password":     "password",
	"dry-run":      "dry_run",
	"headless":     "headless",
	"timeout":      "timeout",
	"browser-path": "browser_path",
	"trash-path":   "trash_path",
	"max-depth":    "max_depth",
	"every":        "every",
	"theme":        "theme",
	"data-dir":     "data_dir",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-file":     "log.file",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdin)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return exitCode(ctx, err, stderr)
}

// exitCode prints err once and maps it to the process exit status
func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "\nInterrupted! Cleaning up...")
		return exitInterrupted
	case err != nil:
		ui.Errorln(stderr, err)
		return exitError
	default:
		return exitOK
	}
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "cptrash",
		Short: "Recursively delete cPanel File Manager trash contents",
		Long: `cptrash logs into cPanel through a Chromium-based browser, opens the
File Manager on /home/<user>/.trash and deletes everything inside it,
folder by folder, printing a summary of what was removed.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			defer logger.Shutdown()
			return runSweep(cmd, cfg, v, stdin)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml and ~/.config/cptrash)")
	pf.StringP("url", "u", "", "cPanel URL (e.g., https://example.com:2083)")
	pf.StringP("username", "n", "", "cPanel username")
	pf.String("data-dir", "", "directory for run history and locks")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("log-file", "", "also write logs to this rotating file")

	f := rootCmd.Flags()
	f.StringP("password", "p", "", "cPanel password")
	f.BoolP("dry-run", "d", false, "preview what would be deleted without deleting")
	f.BoolP("headless", "H", false, "run the browser without a window")
	f.StringP("timeout", "t", "", "listing timeout, in milliseconds or as a duration (default 30s)")
	f.StringP("browser-path", "b", "", "path to a Chromium-based browser executable")
	f.String("trash-path", "", "trash directory to empty (default /home/<username>/.trash)")
	f.Int("max-depth", 0, "deepest folder level to enter, 0 = unlimited (default 64)")
	f.String("every", "", "repeat the sweep at this interval, e.g. 24h")
	f.String("theme", "", "cPanel theme in the File Manager URL (default jupiter)")

	rootCmd.AddCommand(
		newHistoryCmd(&cfgFile),
		newBrowsersCmd(),
		newUnlockCmd(&cfgFile),
		newStopCmd(&cfgFile),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig binds the command's flags over env, file and defaults, then
// starts the logger
func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, *viper.Viper, error) {
	v := viper.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Writer = cmd.ErrOrStderr()
	if err := logger.Init(logCfg); err != nil {
		return nil, nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Get().Debug("using config file", "path", used)
	}
	return cfg, v, nil
}

// bindFlags binds every known flag present on fs to its config key
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}
