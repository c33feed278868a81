package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ning0612/cptrash/internal/browser"
	"github.com/Ning0612/cptrash/internal/config"
	"github.com/Ning0612/cptrash/internal/daemon"
	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/progress"
	"github.com/Ning0612/cptrash/internal/service"
	"github.com/Ning0612/cptrash/internal/ui"
)

func runSweep(cmd *cobra.Command, cfg *config.Config, v *viper.Viper, stdin io.Reader) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	ui.Banner(out)
	if cfg.DryRun {
		ui.DryRunNotice(out)
	}

	prompter := ui.NewPrompter(stdin, out)
	if missing := cfg.Missing(); len(missing) > 0 && !prompter.Interactive() {
		return fmt.Errorf("%w: missing %s (use flags, CPANEL_* variables or a config file)",
			domain.ErrConfigInvalid, strings.Join(missing, ", "))
	}
	if err := prompter.PromptCredentials(cfg, prompter.Interactive() && !headlessChosen(cmd, v)); err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	if err := chooseBrowser(cfg, prompter, out); err != nil {
		return err
	}

	svc, err := service.NewSweepService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.Every > 0 {
		return runDaemon(ctx, svc, cfg, out)
	}

	fmt.Fprintln(out)
	var result *service.Result
	err = ui.RunWithSpinner(ctx, out, "Scanning trash...", func(ctx context.Context, r progress.Reporter) error {
		svc.SetProgressReporter(r)
		var sweepErr error
		result, sweepErr = svc.Sweep(ctx)
		return sweepErr
	})
	if result != nil && err == nil {
		printResult(out, result)
	}
	return err
}

// runDaemon repeats the sweep every cfg.Every until interrupted
func runDaemon(ctx context.Context, svc *service.SweepService, cfg *config.Config, out io.Writer) error {
	svc.OnResult(func(result *service.Result, err error) {
		if err != nil {
			ui.Errorln(out, err)
			return
		}
		printResult(out, result)
	})

	pidFile := daemon.ForAccount(cfg.DataDir, cfg.Account())
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer pidFile.Remove()

	watcher, err := service.NewDaemonService(svc)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx, cfg.Every); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sweeping every %s, press Ctrl+C or run 'cptrash stop' to end\n\n", cfg.Every)

	watcher.Wait()
	if stats := watcher.Status().SchedulerStats; stats != nil {
		fmt.Fprintf(out, "%d sweeps, %d succeeded, %d failed\n", stats.TotalRuns, stats.SuccessfulRuns, stats.FailedRuns)
	}
	if err := watcher.Stop(); err != nil {
		return err
	}
	return ctx.Err()
}

func printResult(out io.Writer, result *service.Result) {
	fmt.Fprintln(out, ui.CompletionLine(result.Report, result.Mode))
	fmt.Fprint(out, ui.SummaryTable(result.Report.Entries()))
	fmt.Fprintln(out, ui.SummaryBox(result.Report, result.Mode, result.Elapsed()))
	fmt.Fprintln(out)
}

// headlessChosen reports whether a flag, variable or config file already
// decided the headless setting
func headlessChosen(cmd *cobra.Command, v *viper.Viper) bool {
	if cmd.Flags().Changed("headless") || v.InConfig("headless") {
		return true
	}
	for _, name := range []string{config.EnvPrefix + "_HEADLESS", "HEADLESS"} {
		if _, ok := os.LookupEnv(name); ok {
			return true
		}
	}
	return false
}

// chooseBrowser fills cfg.BrowserPath, asking when several are installed
func chooseBrowser(cfg *config.Config, prompter *ui.Prompter, out io.Writer) error {
	if cfg.BrowserPath != "" {
		installed, err := browser.Resolve(config.ExpandPath(cfg.BrowserPath))
		if err != nil {
			return fmt.Errorf("%w (check the path or install a supported browser)", err)
		}
		cfg.BrowserPath = installed.Path
		return nil
	}

	found := browser.Detect()
	if len(found) == 0 {
		fmt.Fprintln(out, "Please install one of the following browsers:")
		for _, b := range browser.Supported() {
			fmt.Fprintf(out, "  - %s\n", b.Name)
		}
		fmt.Fprintln(out, "Or specify a browser path with -b")
		return domain.ErrBrowserNotFound
	}

	chosen := found[0]
	if len(found) > 1 && prompter.Interactive() {
		var err error
		if chosen, err = prompter.SelectBrowser(found); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "  Using %s\n", chosen.Name)
	cfg.BrowserPath = chosen.Path
	return nil
}
