package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/dcc"
	"github.com/voguefx/vogue/internal/manager"
	"github.com/voguefx/vogue/internal/ui"
	"github.com/voguefx/vogue/internal/versioning"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Manage product versions",
}

var (
	flagVerProduct string
	flagVerSource  string
	flagVerComment string
	flagVerTask    string
	flagVerSince   string
)

var versionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Allocate the next version on a product",
	Long: `Allocate the next version number on a product and materialize the
source file at the canonical scene path. The DCC application is
detected from the source file extension.`,
	Run: func(cmd *cobra.Command, args []string) {
		if flagVerProduct == "" {
			fatal(fmt.Errorf("--product is required"))
		}
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		opts := manager.AddVersionOpts{
			Comment:    flagVerComment,
			SourcePath: flagVerSource,
		}
		if flagVerTask != "" {
			opts.TaskID = &flagVerTask
		}
		if flagVerSource != "" {
			reg, err := dcc.LoadRegistry(cfg.DCCRegistry)
			if err != nil {
				fatal(err)
			}
			if app, ok := reg.AppForExt(filepath.Ext(flagVerSource)); ok {
				opts.DCCApp = app.Name
			}
		}

		v, err := mgr.AddVersion(flagVerProduct, opts)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("%s -> %s", ui.Accent(v.Name), v.ScenePath))
	},
}

var versionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List versions, optionally filtered by product or age",
	Long: `List versions. --since accepts natural language, for example
"yesterday", "last monday" or "2 weeks ago".`,
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		var cutoff time.Time
		if flagVerSince != "" {
			w := when.New(nil)
			w.Add(en.All...)
			w.Add(common.All...)
			r, err := w.Parse(flagVerSince, time.Now())
			if err != nil || r == nil {
				fatal(fmt.Errorf("cannot understand --since %q", flagVerSince))
			}
			cutoff = r.Time
		}

		versions, err := mgr.ListVersions()
		if err != nil {
			fatal(err)
		}
		for _, v := range versions {
			if flagVerProduct != "" && v.ProductID != flagVerProduct {
				continue
			}
			if !cutoff.IsZero() && v.CreatedAt.Before(cutoff) {
				continue
			}
			fmt.Printf("%-6s %-10s %-12s %s %s\n",
				versioning.Format(v.Number), v.Status, v.Author,
				v.CreatedAt.Local().Format("2006-01-02 15:04"), ui.Dim(v.ID))
		}
	},
}

var versionPublishCmd = &cobra.Command{
	Use:   "publish <version-id>",
	Short: "Publish a draft version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		if err := mgr.PublishVersion(args[0]); err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("published %s", args[0]))
	},
}

func init() {
	versionAddCmd.Flags().StringVar(&flagVerProduct, "product", "", "product id")
	versionAddCmd.Flags().StringVar(&flagVerSource, "source", "", "source scene file to materialize")
	versionAddCmd.Flags().StringVar(&flagVerComment, "comment", "", "version comment")
	versionAddCmd.Flags().StringVar(&flagVerTask, "task", "", "task id this version fulfills")

	versionListCmd.Flags().StringVar(&flagVerProduct, "product", "", "filter by product id")
	versionListCmd.Flags().StringVar(&flagVerSince, "since", "", "only versions created since, natural language ok")

	versionCmd.AddCommand(versionAddCmd)
	versionCmd.AddCommand(versionListCmd)
	versionCmd.AddCommand(versionPublishCmd)
	rootCmd.AddCommand(versionCmd)
}
