package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/atp-go/pkg/atp"
	"github.com/theapemachine/atp-go/pkg/auth"
	"github.com/theapemachine/atp-go/pkg/client"
	"github.com/theapemachine/atp-go/pkg/payment"
	"github.com/theapemachine/atp-go/pkg/stores"
)

var (
	agentLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	chatTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Hold a conversation with the agent",
		Long:  longChat,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging()

			agent, err := buildAgentClient()
			if err != nil {
				return err
			}

			if card, err := agent.Discover(cmd.Context()); err == nil {
				fmt.Println(card)
			} else {
				charmlog.Warn("agent card unavailable", "error", err)
			}

			var (
				contextID     string
				currentTaskID string
				currentState  atp.TaskState
			)

			for {
				var input string

				prompt := huh.NewInput().
					Title("You").
					Value(&input).
					Placeholder("Type a message, /history, /contexts, /forget or /quit")

				if err := prompt.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}

					return err
				}

				switch strings.TrimSpace(input) {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/history":
					showHistory(cmd.Context(), agent, contextID)
					continue
				case "/contexts":
					showContexts(agent)
					continue
				case "/forget":
					if contextID != "" && agent.Contexts() != nil {
						agent.Contexts().Remove(contextID)
					}

					contextID = ""
					currentTaskID = ""
					currentState = ""
					fmt.Println("Conversation forgotten, starting fresh.")
					continue
				}

				inv := agent.SendMessage(cmd.Context(), client.SendRequest{
					Text:             input,
					ContextID:        contextID,
					CurrentTaskID:    currentTaskID,
					CurrentTaskState: currentState,
				})

				for update := range inv.Updates() {
					switch u := update.(type) {
					case client.TaskUpdate:
						contextID = u.ContextID
						currentTaskID = u.TaskID
						currentState = u.Status.State
						charmlog.Debug("task update", "taskID", u.TaskID, "state", u.Status.State)
					case client.StatusUpdate:
						if u.Status == client.StatusKeepAlive {
							charmlog.Info(u.Message)
						}
					case client.FinalAnswerUpdate:
						fmt.Printf("\n%s %s\n\n", agentLabelStyle.Render("Agent:"), u.Text)
					}
				}

				if err := inv.Err(); err != nil {
					charmlog.Error("invocation failed", "error", err)
				}
			}
		},
	}
)

// showContexts lists every conversation the local registry knows about.
func showContexts(agent *client.AgentClient) {
	store := agent.Contexts()
	if store == nil {
		fmt.Println("No context registry configured.")
		return
	}

	records := store.Contexts()
	if len(records) == 0 {
		fmt.Println("No conversations yet.")
		return
	}

	fmt.Println()

	for _, record := range records {
		title := record.Title
		if title == "" {
			title = "(untitled)"
		}

		fmt.Printf("%s %s (%d tasks)\n", chatTitleStyle.Render(title), record.ContextID, len(record.TaskIDs))
	}

	fmt.Println()
}

// showHistory reloads the running conversation through the aggregator and
// prints it oldest first.
func showHistory(ctx context.Context, agent *client.AgentClient, contextID string) {
	if contextID == "" {
		fmt.Println("No conversation yet.")
		return
	}

	conversation, err := agent.LoadContext(ctx, contextID)
	if err != nil {
		charmlog.Error("could not load conversation", "error", err)
		return
	}

	fmt.Printf("\n%s\n\n", chatTitleStyle.Render(conversation.Title))

	for _, msg := range conversation.Messages {
		label := userLabelStyle.Render("You:")
		if msg.Role == client.DisplayRoleAssistant {
			label = agentLabelStyle.Render("Agent:")
		}

		fmt.Printf("%s %s\n", label, msg.Text)
	}

	fmt.Println()
}

/*
buildAgentClient assembles the client from config and persistent flags:
the JSON-RPC endpoint, the payment handler with its token store, an
in-memory context registry and optional bearer credentials.
*/
func buildAgentClient() (*client.AgentClient, error) {
	rpcURL := endpoint
	if rpcURL == "" {
		rpcURL = viper.GetString("endpoints.agent")
	}

	if rpcURL == "" {
		return nil, errors.New("no agent endpoint configured")
	}

	tokens := payment.NewTokenStore()

	var opener payment.Opener = payment.AnnounceOpener{}
	if viper.GetBool("payment.open_browser") {
		opener = payment.SystemOpener{}
	}

	paymentBase := viper.GetString("endpoints.payment")
	if paymentBase == "" {
		paymentBase = strings.TrimSuffix(rpcURL, "/rpc")
	}

	payOpts := []payment.HandlerOption{payment.WithOpener(opener)}

	if interval := viper.GetDuration("payment.interval"); interval > 0 {
		payOpts = append(payOpts, payment.WithInterval(interval))
	}

	if attempts := viper.GetInt("payment.max_attempts"); attempts > 0 {
		payOpts = append(payOpts, payment.WithMaxAttempts(attempts))
	}

	opts := client.DefaultOptions()

	if interval := viper.GetDuration("poll.interval"); interval > 0 {
		opts.PollInterval = interval
	}

	if attempts := viper.GetInt("poll.max_attempts"); attempts > 0 {
		opts.MaxPollAttempts = attempts
	}

	if every := viper.GetInt("poll.keepalive_every"); every > 0 {
		opts.KeepAliveEvery = every
	}

	if modes := viper.GetStringSlice("client.accepted_output_modes"); len(modes) > 0 {
		opts.AcceptedOutputModes = modes
	}

	options := []client.Option{
		client.WithOptions(opts),
		client.WithTokenStore(tokens),
		client.WithPaymentHandler(payment.NewHandler(paymentBase, tokens, payOpts...)),
		client.WithContextStore(stores.NewInMemoryContextStore()),
	}

	token := bearerToken
	if token == "" {
		token = viper.GetString("auth.bearer_token")
	}

	if token != "" {
		var credOpts []auth.CredentialsOption

		if limit := viper.GetInt64("client.rate_limit"); limit > 0 {
			credOpts = append(credOpts, auth.WithRateLimiter(auth.NewRateLimiter(limit, time.Minute)))
		}

		options = append(options, client.WithCredentials(auth.Static(token, credOpts...)))
	}

	return client.New(rpcURL, options...), nil
}

// configureLogging applies log.level from the config file.
func configureLogging() {
	level, err := charmlog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = charmlog.InfoLevel
	}

	charmlog.SetLevel(level)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

var longChat = `
Starts an interactive conversation. Every message you type becomes a task on
the remote agent; answers stream back as the task settles. Slash commands:
/history reloads the whole conversation from the agent, /contexts lists every
known thread, /forget drops the current one locally, /quit leaves.
`
