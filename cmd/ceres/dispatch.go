package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var dispatchRequest string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <command...>",
	Short: "Run command text through validation and execution without the model",
	Long: `Dispatch treats its arguments as model output: it is normalized, classified
as shell or AppleScript, validated and executed. --request supplies the original
wording, which steers classification.`,
	Example: `  ceres dispatch ls -la ~/Desktop
  ceres dispatch --request "open safari" 'tell application "Safari" to activate'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		raw := strings.Join(args, " ")
		res := a.agent.Dispatch(cmd.Context(), raw, dispatchRequest)

		p := newPrinter()
		p.Header(fmt.Sprintf("%s [%s] %s", res.ID, res.Kind, res.Outcome.Status))
		if p.Envelope(res.Envelope) {
			return errors.New("dispatch failed")
		}
		return nil
	},
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchRequest, "request", "", "original natural-language request")
	rootCmd.AddCommand(dispatchCmd)
}
