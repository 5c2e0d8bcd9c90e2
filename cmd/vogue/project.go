package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/voguefx/vogue/internal/hierarchy"
	"github.com/voguefx/vogue/internal/manager"
	"github.com/voguefx/vogue/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, list and inspect projects",
}

var (
	flagProjCode string
	flagProjFPS  int
	flagProjRes  string
)

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Long: `Create a project directory with the standard layout and documents.

With no name argument an interactive form is shown.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		opts := manager.CreateProjectOpts{Code: flagProjCode, FPS: flagProjFPS}

		if name == "" {
			fpsStr := "24"
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Project name").Value(&name).Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
				huh.NewInput().Title("Code").Value(&opts.Code),
				huh.NewInput().Title("FPS").Value(&fpsStr),
			))
			if err := form.Run(); err != nil {
				fatal(err)
			}
			if n, err := strconv.Atoi(fpsStr); err == nil {
				opts.FPS = n
			}
		}

		if flagProjRes != "" {
			res, err := parseResolution(flagProjRes)
			if err != nil {
				fatal(err)
			}
			opts.Resolution = res
		}

		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		p, err := mgr.CreateProject(name, opts)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("created project %s at %s", ui.Accent(p.Name), p.Path))
	},
}

var projectLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load a project, importing legacy state if needed",
	Long: `Open a project and verify its documents. A directory holding only
a legacy 00_Pipeline/pipeline.json is imported into per-entity
documents on first load.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		p, err := mgr.LoadProject(args[0])
		if err != nil {
			fatal(err)
		}
		folders, err := mgr.ListFolders()
		if err != nil {
			fatal(err)
		}
		versions, err := mgr.ListVersions()
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("loaded %s: %d folders, %d versions", ui.Accent(p.Name), len(folders), len(versions)))
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects under the projects root",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		names, err := mgr.ListProjects()
		if err != nil {
			fatal(err)
		}
		if len(names) == 0 {
			fmt.Println(ui.Dim("no projects"))
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

var projectInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the loaded project's settings and hierarchy",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		p := mgr.Project()
		fmt.Println(ui.Header(p.Name))
		fmt.Printf("  path        %s\n", p.Path)
		fmt.Printf("  fps         %d\n", p.FPS)
		if len(p.Resolution) == 2 {
			fmt.Printf("  resolution  %dx%d\n", p.Resolution[0], p.Resolution[1])
		}

		roots, err := mgr.GetHierarchy()
		if err != nil {
			fatal(err)
		}
		fmt.Println()
		fmt.Println(ui.Header("Hierarchy"))
		hierarchy.Walk(roots, func(n *hierarchy.Node, depth int) {
			label := fmt.Sprintf("%s %s", n.Folder.Name, ui.Dim("("+n.Folder.FolderType+")"))
			fmt.Println(ui.Tree(depth, false, label))
		})
	},
}

var flagAnatomyOut string

var projectAnatomyCmd = &cobra.Command{
	Use:   "anatomy",
	Short: "Export the project anatomy as YAML",
	Long: `Print (or write with --out) the project's folder types, task types
and statuses as YAML, the exchange format the review tools read.`,
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		data, err := yaml.Marshal(mgr.Project().Anatomy)
		if err != nil {
			fatal(fmt.Errorf("marshal anatomy: %w", err))
		}
		if flagAnatomyOut == "" {
			fmt.Print(string(data))
			return
		}
		if err := os.WriteFile(flagAnatomyOut, data, 0o644); err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("anatomy written to %s", flagAnatomyOut))
	},
}

func parseResolution(s string) ([]int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return nil, fmt.Errorf("resolution must look like 1920x1080, got %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return nil, fmt.Errorf("bad resolution width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return nil, fmt.Errorf("bad resolution height %q", h)
	}
	return []int{width, height}, nil
}

func init() {
	projectCreateCmd.Flags().StringVar(&flagProjCode, "code", "", "short project code")
	projectCreateCmd.Flags().IntVar(&flagProjFPS, "fps", 24, "frames per second")
	projectCreateCmd.Flags().StringVar(&flagProjRes, "resolution", "", "resolution, e.g. 1920x1080")

	projectAnatomyCmd.Flags().StringVar(&flagAnatomyOut, "out", "", "write to file instead of stdout")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectLoadCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectInfoCmd)
	projectCmd.AddCommand(projectAnatomyCmd)
	rootCmd.AddCommand(projectCmd)
}
