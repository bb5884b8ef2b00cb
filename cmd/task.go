package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task [id]",
	Short: "Inspect a task on the remote agent",
	Long:  longTask,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()

		agent, err := buildAgentClient()
		if err != nil {
			return err
		}

		task, err := agent.GetTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(task)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
}

var longTask = `
Fetches a single task by id and prints the full snapshot: status, message
history, artifacts and whatever metadata the agent attached.
`
