package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/ui"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage assets",
}

var flagAssetType string

var assetAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an asset with its folder chain and default product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		folder, err := mgr.AddAsset(args[0], flagAssetType)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("asset %s (%s)", ui.Accent(folder.Name), flagAssetType))
	},
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List asset folders",
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
			if f.FolderType != "Asset" {
				continue
			}
			group := ""
			if f.ParentID != nil {
				group = byID[*f.ParentID]
			}
			fmt.Printf("%s/%s  %s\n", group, f.Name, ui.Dim(f.Status))
		}
	},
}

func init() {
	assetAddCmd.Flags().StringVar(&flagAssetType, "type", "Characters", "asset category (Characters, Props, Environments)")

	assetCmd.AddCommand(assetAddCmd)
	assetCmd.AddCommand(assetListCmd)
	rootCmd.AddCommand(assetCmd)
}
