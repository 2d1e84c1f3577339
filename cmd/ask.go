package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/interview-copilot/internal/provider"
	"github.com/sells-group/interview-copilot/internal/sink"
)

var (
	askContext string
	askTopic   string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Send a question to the configured provider",
	Long: `Send a question to the configured provider and print the answer.

With no argument the current clipboard contents are used as the question.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		question := ""
		if len(args) > 0 {
			question = strings.TrimSpace(args[0])
		}
		if question == "" {
			text, err := clipboard.ReadAll()
			if err != nil {
				return eris.Wrap(err, "ask: read clipboard")
			}
			question = strings.TrimSpace(text)
		}
		if question == "" {
			return eris.New("ask: no question given and clipboard is empty")
		}

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		answer, err := app.Dispatch.Send(ctx, provider.Query{
			Question: question,
			Context:  askContext,
			Topic:    askTopic,
		})
		if err != nil {
			return err
		}

		return sink.NewConsole(os.Stdout).Show(ctx, answer)
	},
}

func init() {
	askCmd.Flags().StringVar(&askContext, "context", "", "extra context sent with the question")
	askCmd.Flags().StringVar(&askTopic, "topic", "", "topic hint sent with the question")
	rootCmd.AddCommand(askCmd)
}
