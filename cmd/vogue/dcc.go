package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/dcc"
	"github.com/voguefx/vogue/internal/ui"
)

var dccCmd = &cobra.Command{
	Use:   "dcc",
	Short: "Inspect the DCC application registry",
}

var dccListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered applications and their extensions",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := dcc.LoadRegistry(cfg.DCCRegistry)
		if err != nil {
			fatal(err)
		}
		for _, app := range reg.Apps {
			installed := ui.Dim("not installed")
			if path, ok := app.Detect(); ok {
				installed = path
			}
			fmt.Printf("%-12s %-20s %-24s %s\n", app.Name, app.DisplayName, installed, ui.Dim(strings.Join(app.Extensions, " ")))
		}
	},
}

var dccDetectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Show which application owns a scene file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := dcc.LoadRegistry(cfg.DCCRegistry)
		if err != nil {
			fatal(err)
		}
		ext := args[0]
		if i := strings.LastIndex(ext, "."); i >= 0 {
			ext = ext[i:]
		}
		app, ok := reg.AppForExt(ext)
		if !ok {
			fatal(fmt.Errorf("no application registered for %q", ext))
		}
		fmt.Println(ui.OK("%s (%s)", app.DisplayName, app.Name))
	},
}

func init() {
	dccCmd.AddCommand(dccListCmd)
	dccCmd.AddCommand(dccDetectCmd)
	rootCmd.AddCommand(dccCmd)
}
