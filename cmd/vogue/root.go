package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/config"
	"github.com/voguefx/vogue/internal/manager"
	"github.com/voguefx/vogue/internal/ui"
)

var (
	flagConfig  string
	flagProject string
	flagNoColor bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vogue",
	Short: "Vogue project pipeline manager",
	Long: `Vogue manages VFX project state on local disk.

Each project is a directory of per-entity JSON documents plus the
numbered content directories (01_Assets, 02_Shots, 06_Scenes, ...).
Older tooling reads the aggregate 00_Pipeline/pipeline.json, which
vogue keeps exported from canonical state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			ui.Plain()
		}
		var err error
		cfg, err = config.Load(flagConfig)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./vogue.yaml, ~/.config/vogue/vogue.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project name")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

// newManager builds a manager from the resolved config.
func newManager() (*manager.Manager, error) {
	return manager.New(manager.Config{
		ProjectsRoot: cfg.ProjectsRoot,
		User:         cfg.User,
		IndexEnabled: cfg.Index.Enabled,
		Logger:       cfg.NewLogger("[vogue] "),
	})
}

// openProject builds a manager and loads the project named by --project
// or VOGUE_PROJECT.
func openProject() (*manager.Manager, error) {
	mgr, err := newManager()
	if err != nil {
		return nil, err
	}
	name := flagProject
	if name == "" {
		name = os.Getenv("VOGUE_PROJECT")
	}
	if name == "" {
		return nil, fmt.Errorf("no project named, use --project or VOGUE_PROJECT")
	}
	if _, err := mgr.LoadProject(name); err != nil {
		_ = mgr.Close()
		return nil, err
	}
	return mgr, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, ui.Error("%v", err))
	os.Exit(1)
}
