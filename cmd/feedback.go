package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	feedbackTaskFlag    string
	feedbackRatingFlag  int
	feedbackMessageFlag string

	feedbackCmd = &cobra.Command{
		Use:   "feedback",
		Short: "Rate a finished task",
		Long:  longFeedback,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging()

			agent, err := buildAgentClient()
			if err != nil {
				return err
			}

			taskID := feedbackTaskFlag
			rating := feedbackRatingFlag
			message := feedbackMessageFlag

			if taskID == "" || rating == 0 {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("Task id").
							Value(&taskID),
						huh.NewSelect[int]().
							Title("Rating").
							Options(
								huh.NewOption("1 - unusable", 1),
								huh.NewOption("2 - poor", 2),
								huh.NewOption("3 - okay", 3),
								huh.NewOption("4 - good", 4),
								huh.NewOption("5 - excellent", 5),
							).
							Value(&rating),
						huh.NewText().
							Title("What stood out?").
							Value(&message),
					),
				)

				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}

					return err
				}
			}

			result, err := agent.SubmitFeedback(cmd.Context(), taskID, message, rating)
			if err != nil {
				return err
			}

			fmt.Println(result.Message)

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().StringVar(&feedbackTaskFlag, "task", "", "task id to rate")
	feedbackCmd.Flags().IntVar(&feedbackRatingFlag, "rating", 0, "rating from 1 to 5")
	feedbackCmd.Flags().StringVar(&feedbackMessageFlag, "message", "", "free-form feedback")
}

var longFeedback = `
Records a rating (1-5) and an optional comment against a settled task. With
no flags an interactive form collects the details.
`
