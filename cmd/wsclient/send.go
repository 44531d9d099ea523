package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
)

// Send command flags
var (
	sendWait time.Duration
	sendHex  bool
	sendType string
)

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().DurationVar(&sendWait, "wait", 0, "Print incoming frames for this long after sending")
	sendCmd.Flags().BoolVar(&sendHex, "hex", false, "Message is hex and is sent as a binary frame")
	sendCmd.Flags().StringVar(&sendType, "type", "", "Frame type (text, binary, ping, pong, close)")
}

// sendCmd sends a single message
var sendCmd = &cobra.Command{
	Use:   "send <url|endpoint> <message>",
	Short: "Send one message and disconnect",
	Long: `Connect, send one message, optionally print replies, then close.

The message is sent as a text frame, or a binary frame with --binary. With
--hex the message is decoded from hex first and sent as binary unless
--type says otherwise. Control frames (--type ping, pong or close) carry at
most 125 bytes.`,
	Example: `  # Fire and forget
  wsclient send ws://localhost:8080/events '{"type":"ping"}'

  # Print replies for two seconds
  wsclient send echo "hello" --wait 2s

  # Send raw bytes
  wsclient send ws://localhost:8080/ "01 02 ff" --hex

  # Ping and show the pong
  wsclient send echo "are you there" --type ping --wait 1s`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	op := protocol.Text
	data := []byte(args[1])
	switch {
	case sendHex:
		b, err := hex.DecodeString(stripSpaces(args[1]))
		if err != nil {
			return fmt.Errorf("invalid hex message: %w", err)
		}
		op, data = protocol.Binary, b
	case binaryMode:
		op = protocol.Binary
	}
	if sendType != "" {
		t, err := protocol.ParseFrameType(sendType)
		if err != nil {
			return err
		}
		op = t
	}

	t, err := resolveTarget(registry, args[0])
	if err != nil {
		return err
	}

	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cw, err := openCapture(registry, t.URL)
	if err != nil {
		return err
	}

	ls := newLineSession(cmd.OutOrStdout())
	taps := client.Taps{ls}
	if cw != nil {
		defer closeCapture(cmd, cw)
		taps = append(taps, cw)
	}
	c := client.New(ls, append(clientOptions(cmd, registry, t), client.WithTap(taps))...)

	if err := ls.connect(ctx, c, t.URL); err != nil {
		printFailure(cmd, "Connection failed", err)
		return err
	}
	rememberEndpoint(t)

	if err := send(ctx, c, op, data); err != nil {
		shutdown(c)
		return fmt.Errorf("send failed: %w", err)
	}

	err = ls.wait(ctx, sendWait)
	shutdown(c)
	return err
}

func stripSpaces(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', ':':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
