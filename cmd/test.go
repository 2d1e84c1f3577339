package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/interview-copilot/internal/provider"
)

var testPrompt string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test request to verify the provider configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		answer, err := app.Dispatch.Send(ctx, provider.Query{Question: testPrompt})
		if err != nil {
			fmt.Printf("FAIL: %s\n", err)
			return err
		}

		fmt.Printf("OK: %s\n", answer.Answer)
		return nil
	},
}

func init() {
	testCmd.Flags().StringVar(&testPrompt, "prompt", "ping", "prompt to send")
	rootCmd.AddCommand(testCmd)
}
