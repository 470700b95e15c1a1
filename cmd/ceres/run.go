package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <request...>",
	Short: "Answer one natural-language request",
	Example: `  ceres run list the files on my desktop
  ceres run open safari
  ceres run help`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		env, err := a.agent.Handle(cmd.Context(), "text", strings.Join(args, " "))
		if newPrinter().Envelope(env) || err != nil {
			return errors.New("request failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
