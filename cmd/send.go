package cmd

import (
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/atp-go/pkg/atp"
	"github.com/theapemachine/atp-go/pkg/client"
)

var (
	sendContextFlag   string
	sendTaskFlag      string
	sendTaskStateFlag string
	sendReplyToFlag   string

	sendCmd = &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message and print the final answer",
		Long:  longSend,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging()

			agent, err := buildAgentClient()
			if err != nil {
				return err
			}

			inv := agent.SendMessage(cmd.Context(), client.SendRequest{
				Text:             strings.Join(args, " "),
				ContextID:        sendContextFlag,
				CurrentTaskID:    sendTaskFlag,
				CurrentTaskState: atp.TaskState(sendTaskStateFlag),
				ReplyToTaskID:    sendReplyToFlag,
			})

			for update := range inv.Updates() {
				switch u := update.(type) {
				case client.TaskUpdate:
					charmlog.Debug("task update", "taskID", u.TaskID, "state", u.Status.State)
				case client.FinalAnswerUpdate:
					fmt.Println(u.Text)
				}
			}

			return inv.Err()
		},
	}
)

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendContextFlag, "context", "", "context id to continue")
	sendCmd.Flags().StringVar(&sendTaskFlag, "task", "", "current task id in that context")
	sendCmd.Flags().StringVar(&sendTaskStateFlag, "task-state", "", "state of the current task")
	sendCmd.Flags().StringVar(&sendReplyToFlag, "reply-to", "", "task id to fork a reply from")
}

var longSend = `
Sends a single message and blocks until the resulting task settles, printing
the extracted answer to stdout. Pass --context/--task/--task-state to append
to an existing thread, or --reply-to to fork off an older task.
`
