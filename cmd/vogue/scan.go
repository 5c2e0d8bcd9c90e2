package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/manager"
	"github.com/voguefx/vogue/internal/ui"
	"github.com/voguefx/vogue/internal/watch"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Reconcile stored state with the filesystem",
	Long: `Walk the project directories and adopt assets, shots and scene
files found on disk but missing from the store. Reconciliation is
additive: nothing stored is removed.`,
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		report, err := mgr.ScanFilesystem()
		if err != nil {
			fatal(err)
		}
		printReport(report)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and reconcile on changes",
	Long: `Run the watch daemon. File events are debounced; once the tree
settles, a reconciliation scan runs. Stop with Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		daemon, err := watch.New(mgr, watch.Config{
			Debounce: cfg.Scan.Debounce(),
			Logger:   cfg.NewLogger("[watch] "),
			OnReport: printReport,
		})
		if err != nil {
			fatal(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := daemon.Start(ctx); err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("watching, Ctrl-C to stop"))
		<-ctx.Done()
		if err := daemon.Stop(); err != nil {
			fatal(err)
		}
	},
}

func printReport(r *manager.ScanReport) {
	if r.Empty() && len(r.Skipped) == 0 {
		fmt.Println(ui.Dim("nothing to reconcile"))
		return
	}
	for _, a := range r.AddedAssets {
		fmt.Println(ui.OK("asset %s", a))
	}
	for _, s := range r.AddedShots {
		fmt.Println(ui.OK("shot %s", s))
	}
	for _, v := range r.AddedVersions {
		fmt.Println(ui.OK("version %s", v))
	}
	for _, c := range r.Conflicts {
		fmt.Println(ui.Warn("conflict: %s", c))
	}
	for _, s := range r.Skipped {
		fmt.Println(ui.Dim("skipped " + s))
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
}
