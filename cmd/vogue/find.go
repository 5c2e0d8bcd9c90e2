package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/index"
	"github.com/voguefx/vogue/internal/ui"
)

var (
	flagFindKind   string
	flagFindStatus string
	flagFindTag    string
	flagFindLimit  int
)

var findCmd = &cobra.Command{
	Use:   "find [name]",
	Short: "Query entities through the index",
	Long: `Query entities by name substring, kind, status or tag. Uses the
SQLite index when enabled, otherwise falls back to reading the
documents.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		f := index.Filter{
			Kind:   entity.Kind(flagFindKind),
			Status: flagFindStatus,
			Tag:    flagFindTag,
			Limit:  flagFindLimit,
		}
		if len(args) == 1 {
			f.Name = args[0]
		}

		rows, err := mgr.Find(context.Background(), f)
		if err != nil {
			fatal(err)
		}
		if len(rows) == 0 {
			fmt.Println(ui.Dim("no matches"))
			return
		}
		for _, r := range rows {
			fmt.Printf("%-14s %-24s %-12s %s\n", r.Kind, r.Name, r.Status, ui.Dim(r.ID))
		}
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite query cache",
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show indexed entity counts per kind",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		counts, err := mgr.IndexCounts(context.Background())
		if err != nil {
			fatal(err)
		}
		for _, kind := range []entity.Kind{
			entity.KindFolder, entity.KindTask, entity.KindProduct,
			entity.KindVersion, entity.KindRepresentation,
		} {
			fmt.Printf("%-16s %d\n", kind, counts[kind])
		}
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from the entity documents",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		if err := mgr.RebuildIndex(context.Background()); err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("index rebuilt"))
	},
}

func init() {
	findCmd.Flags().StringVar(&flagFindKind, "kind", "", "entity kind (folder, task, product, version)")
	findCmd.Flags().StringVar(&flagFindStatus, "status", "", "filter by status")
	findCmd.Flags().StringVar(&flagFindTag, "tag", "", "filter by tag")
	findCmd.Flags().IntVar(&flagFindLimit, "limit", 0, "maximum results")

	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(indexCmd)
}
