package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/tui"
)

var (
	chatAddr  string
	chatLocal bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal client",
	Long: `Open a chat window. By default it connects to a running "ceres serve";
with --local requests are answered in process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The alternate screen owns the terminal; logs go to a file.
		logPath := filepath.Join(os.TempDir(), "ceres-chat.log")
		if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			log.SetOutput(f)
			defer f.Close()
		}

		if chatLocal {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			ctrl := tui.NewLocalController(a.agent, a.Close)
			return tui.StartTUI(ctrl, a.agent.GetExecutionManager(), "Ceres (local)")
		}

		addr := chatAddr
		if addr == "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			addr = cfg.Server.Addr
		}
		ctrl, err := tui.Dial(fmt.Sprintf("ws://%s/ws/execute", addr))
		if err != nil {
			return err
		}
		return tui.StartTUI(ctrl, nil, "Ceres @ "+addr)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAddr, "addr", "", "server address (default server.addr)")
	chatCmd.Flags().BoolVar(&chatLocal, "local", false, "answer requests in process instead of connecting to a server")
	rootCmd.AddCommand(chatCmd)
}
