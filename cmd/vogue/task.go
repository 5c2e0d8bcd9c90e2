package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var (
	flagTaskType    string
	flagTaskFolder  string
	flagTaskDepends []string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task to a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if flagTaskFolder == "" {
			fatal(fmt.Errorf("--folder is required"))
		}
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		t, err := mgr.AddTask(args[0], flagTaskType, flagTaskFolder, flagTaskDepends)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("task %s (%s) %s", ui.Accent(t.Name), t.TaskType, ui.Dim(t.ID)))
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		tasks, err := mgr.ListTasks()
		if err != nil {
			fatal(err)
		}
		for _, t := range tasks {
			fmt.Printf("%-24s %-12s %-12s %s\n", t.Name, t.TaskType, t.Status, ui.Dim(t.ID))
		}
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Set a task's status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := openProject()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		if err := mgr.SetStatus(entity.KindTask, args[0], args[1]); err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("task %s -> %s", args[0], args[1]))
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&flagTaskType, "type", "Modeling", "task type from the project anatomy")
	taskAddCmd.Flags().StringVar(&flagTaskFolder, "folder", "", "folder id the task belongs to")
	taskAddCmd.Flags().StringSliceVar(&flagTaskDepends, "depends-on", nil, "task ids this task depends on")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskStatusCmd)
	rootCmd.AddCommand(taskCmd)
}
