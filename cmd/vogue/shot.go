package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/ui"
)

var shotCmd = &cobra.Command{
	Use:   "shot",
	Short: "Manage shots",
}

var shotAddCmd = &cobra.Command{
	Use:   "add <sequence/shot>",
	Short: "Add a shot with its sequence folder and default product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		seq, name, ok := strings.Cut(args[0], "/")
		if !ok {
			fatal(fmt.Errorf("shot must be named sequence/shot, got %q", args[0]))
		}

		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		folder, err := mgr.AddShot(seq, name)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("shot %s", ui.Accent(seq+"/"+folder.Name)))
	},
}

var shotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shot folders",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		folders, err := mgr.ListFolders()
		if err != nil {
			fatal(err)
		}
		byID := make(map[string]string, len(folders))
		for _, f := range folders {
			byID[f.ID] = f.Name
		}
		for _, f := range folders {
			if f.FolderType != "Shot" {
				continue
			}
			seq := ""
			if f.ParentID != nil {
				seq = byID[*f.ParentID]
			}
			fmt.Printf("%s/%s  %s\n", seq, f.Name, ui.Dim(f.Status))
		}
	},
}

func init() {
	shotCmd.AddCommand(shotAddCmd)
	shotCmd.AddCommand(shotListCmd)
	rootCmd.AddCommand(shotCmd)
}
