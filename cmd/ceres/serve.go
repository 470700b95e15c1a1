package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/rafabd1/ceres/internal/server"
	"github.com/rafabd1/ceres/internal/voice"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /health, /ws/execute and /listen",
	Long: `Start the HTTP and WebSocket server.

/ws/execute takes one request per text frame. /listen takes 16-bit PCM audio
frames and answers each with one reply line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if serveAddr != "" {
			a.cfg.Server.Addr = serveAddr
		}

		var gen voice.PartsGenerator
		if a.gemini != nil {
			gen = a.gemini
		}
		transcriber, err := voice.NewTranscriber(a.cfg, gen)
		if err != nil {
			log.Printf("[WARN] Voice disabled: %v", err)
		}

		return server.New(a.cfg, a.agent, transcriber).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
