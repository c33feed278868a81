package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ning0612/cptrash/internal/browser"
	"github.com/Ning0612/cptrash/internal/daemon"
	"github.com/Ning0612/cptrash/internal/lock"
	"github.com/Ning0612/cptrash/internal/logger"
	"github.com/Ning0612/cptrash/internal/state"
	"github.com/Ning0612/cptrash/internal/ui"
)

func newHistoryCmd(cfgFile *string) *cobra.Command {
	var limit int
	var all bool
	var runID int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past sweeps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			stateMgr, err := state.NewManager(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer stateMgr.Close()

			out := cmd.OutOrStdout()
			if runID > 0 {
				entries, err := stateMgr.GetEntries(runID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run #%d\n", runID)
				fmt.Fprint(out, ui.SummaryTable(entries))
				return nil
			}

			// 沒有帳號資訊時顯示全部
			perAccount := !all && cfg.URL != "" && cfg.Username != ""

			var records []state.RunRecord
			if perAccount {
				records, err = stateMgr.GetHistory(cfg.Account(), limit)
			} else {
				records, err = stateMgr.GetAllHistory(limit)
			}
			if err != nil {
				return err
			}

			now := time.Now()
			fmt.Fprint(out, ui.HistoryTable(records, now))

			if perAccount {
				last, err := stateMgr.GetLastSuccess(cfg.Account())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.LastSuccessLine(last, now))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().BoolVar(&all, "all", false, "show every account, not only --url/--username")
	cmd.Flags().Int64Var(&runID, "run", 0, "show the per-folder log of one run by ID")
	return cmd
}

func newBrowsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browsers",
		Short: "List the supported browsers installed on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			installed := make(map[string]bool)
			for _, b := range browser.Detect() {
				installed[b.Path] = true
			}

			for _, b := range browser.Supported() {
				mark := "  "
				if installed[b.Path] {
					mark = "✓ "
				}
				fmt.Fprintf(out, "%s%-24s %s\n", mark, b.Name, b.Path)
			}
			if len(installed) == 0 {
				fmt.Fprintln(out, "\nNo supported browser found; pass one with -b")
			}
			return nil
		},
	}
}

func newUnlockCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Remove the sweep lock left by a crashed run",
		Long: `unlock deletes the lock file of the account given by --url and
--username. Only use it when no other cptrash process is running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			if cfg.URL == "" || cfg.Username == "" {
				return fmt.Errorf("unlock needs --url and --username to find the lock")
			}

			fileLock, err := lock.NewFileLock(cfg.DataDir, cfg.Account())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !fileLock.IsLocked() {
				fmt.Fprintf(out, "No active lock for %s\n", cfg.Account())
				return fileLock.ForceRelease()
			}

			if holder, err := fileLock.GetHolder(); err == nil {
				fmt.Fprintf(out, "Removing lock held by PID %d on %s since %s\n",
					holder.PID, holder.Hostname, holder.StartTime.Format(time.RFC3339))
			}
			if err := fileLock.ForceRelease(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Unlocked %s\n", cfg.Account())
			return nil
		},
	}
}

func newStopCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a scheduled sweep started with --every",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			if cfg.URL == "" || cfg.Username == "" {
				return fmt.Errorf("stop needs --url and --username to find the watcher")
			}

			out := cmd.OutOrStdout()
			pid, err := daemon.ForAccount(cfg.DataDir, cfg.Account()).Stop()
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Fprintf(out, "No scheduled sweep running for %s\n", cfg.Account())
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Stopping scheduled sweep (PID %d)\n", pid)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cptrash %s\n", version)
		},
	}
}
