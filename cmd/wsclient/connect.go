package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wsclient/internal/capture"
	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/discovery"
	"github.com/muurk/wsclient/internal/logging"
	"github.com/muurk/wsclient/internal/session"
	"github.com/muurk/wsclient/internal/ui"
)

func init() {
	rootCmd.AddCommand(connectCmd)
}

// connectCmd opens a session with a server
var connectCmd = &cobra.Command{
	Use:   "connect [url|endpoint]",
	Short: "Open a session with a WebSocket server",
	Long: `Connect to a WebSocket server and exchange messages.

On a terminal this opens a full-screen session showing every frame sent and
received. Type a message and press enter to send it as a text frame, or use
/ping, /binary <hex>, /close and /quit.

When input or output is not a terminal, each line read from stdin is sent
as one frame and frames are printed one per line.

Without an argument on a terminal, the local network is searched for
servers first.`,
	Example: `  # Interactive session
  wsclient connect ws://localhost:8080/chat

  # Connect to a saved endpoint with an extra header
  wsclient connect echo -H "Authorization: Bearer abc"

  # Pipe messages through
  printf 'one\ntwo\n' | wsclient connect ws://localhost:8080/echo

  # Record all frames
  wsclient connect ws://localhost:8080/ --capture-dir ./captures`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)

	var dest string
	switch {
	case len(args) == 1:
		dest = args[0]
	case interactive:
		url, ok, err := session.Pick(ctx, discovery.NewScanner().Scan, discovery.DefaultScanTimeout)
		if err != nil || !ok {
			return err
		}
		dest = url
	default:
		return errors.New("a URL or endpoint name is required when not on a terminal")
	}

	t, err := resolveTarget(registry, dest)
	if err != nil {
		return err
	}
	return connectTo(ctx, cmd, t, interactive)
}

// connectTo runs a session with t, full-screen or line by line.
func connectTo(ctx context.Context, cmd *cobra.Command, t *target, interactive bool) error {
	opts := clientOptions(cmd, registry, t)

	cw, err := openCapture(registry, t.URL)
	if err != nil {
		return err
	}
	var tap client.Tap
	if cw != nil {
		defer closeCapture(cmd, cw)
		tap = cw
	}

	if interactive {
		return session.Run(ctx, t.URL, session.Options{
			Client: opts,
			Tap:    tap,
			Binary: binaryMode,
		})
	}

	ls := newLineSession(cmd.OutOrStdout())
	taps := client.Taps{ls}
	if tap != nil {
		taps = append(taps, tap)
	}
	c := client.New(ls, append(opts, client.WithTap(taps))...)

	if err := ls.connect(ctx, c, t.URL); err != nil {
		printFailure(cmd, "Connection failed", err)
		return err
	}
	rememberEndpoint(t)
	ls.status("connected to %s", t.URL)

	err = ls.run(ctx, c, cmd.InOrStdin(), binaryMode)
	shutdown(c)
	ui.NewPrinter(cmd.ErrOrStderr()).PrintResult(ui.NewSessionSummary(t.URL, ls.summary(), err))
	return err
}

// shutdown closes c, waiting briefly for the server's close reply.
func shutdown(c *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), session.ShutdownTimeout)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		logging.Debug("Connection closed without close reply", zap.Error(err))
	}
}

func closeCapture(cmd *cobra.Command, cw *capture.Writer) {
	if err := cw.Close(); err != nil {
		logging.Warn("Failed to close capture file", zap.Error(err))
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Captured %d frames to %s\n", cw.Count(), cw.Path())
}

// failureResult describes a failed command, with hints when the connection
// itself failed.
func failureResult(title string, err error) *ui.Result {
	var ce *connectError
	if errors.As(err, &ce) {
		return ui.NewConnectFailure(ce.URL, ce.Result)
	}
	return ui.NewFailureResult(title, err, nil)
}

// printFailure prints a failure box to stderr
func printFailure(cmd *cobra.Command, title string, err error) {
	ui.NewPrinter(cmd.ErrOrStderr()).PrintResult(failureResult(title, err))
}
