// Wsclient is a command-line WebSocket client.
//
// It connects to ws:// servers, shows every frame sent and received, and can
// send single messages from scripts. Servers can be saved as named endpoints
// or found on the local network over mDNS.
//
// Usage:
//
//	wsclient [command] [flags]
//
// See 'wsclient --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wsclient/internal/logging"
	"github.com/muurk/wsclient/internal/ui"
	"github.com/muurk/wsclient/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wsclient",
	Short: "WebSocket client",
	Long: `A client for RFC 6455 WebSocket servers.

Connect interactively, send single messages from scripts, capture frames
for analysis, and discover servers advertising _ws._tcp over mDNS.

Set WSCLIENT_LOG_LEVEL=debug (or --log-level debug) to see protocol logs.`,
	Version: version.Full(),
	Example: `  # Interactive session
  wsclient connect ws://localhost:8080/chat

  # Send one message and print replies for two seconds
  wsclient send ws://localhost:8080/echo "hello" --wait 2s

  # Save an endpoint and connect by name
  wsclient endpoint add echo ws://localhost:8080/echo
  wsclient connect echo

  # Find servers on the local network
  wsclient discover`,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintSuccess(version.Name+" "+version.Version, version.Details())
	},
}
