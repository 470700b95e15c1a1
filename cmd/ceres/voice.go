package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rafabd1/ceres/internal/config"
)

var (
	voiceFile    string
	voiceAddr    string
	voiceTimeout time.Duration
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Send a raw PCM recording to /listen and print the reply",
	Long: `Voice sends a file of mono little-endian 16-bit samples, recorded at
voice.sample_rate, as one binary frame and prints the spoken reply.`,
	Example: `  sox in.wav -t raw -r 16000 -e signed -b 16 -c 1 utterance.pcm
  ceres voice --file utterance.pcm`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, err := os.ReadFile(voiceFile)
		if err != nil {
			return errors.Wrap(err, "failed to read audio")
		}

		addr := voiceAddr
		if addr == "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			addr = cfg.Server.Addr
		}

		ws, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), fmt.Sprintf("ws://%s/listen", addr), nil)
		if err != nil {
			return errors.Wrapf(err, "failed to connect to %s", addr)
		}
		defer ws.Close()

		if err := ws.WriteMessage(websocket.BinaryMessage, audio); err != nil {
			return errors.Wrap(err, "failed to send audio")
		}
		ws.SetReadDeadline(time.Now().Add(voiceTimeout))
		_, reply, err := ws.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "no reply from server")
		}
		newPrinter().Line(string(reply))
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return nil
	},
}

func init() {
	voiceCmd.Flags().StringVar(&voiceFile, "file", "", "raw PCM16 file")
	voiceCmd.Flags().StringVar(&voiceAddr, "addr", "", "server address (default server.addr)")
	voiceCmd.Flags().DurationVar(&voiceTimeout, "timeout", 2*time.Minute, "how long to wait for the reply")
	voiceCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(voiceCmd)
}
