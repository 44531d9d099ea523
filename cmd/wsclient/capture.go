package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/muurk/wsclient/internal/capture"
	"github.com/muurk/wsclient/internal/ui"
)

var captureDump bool

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.AddCommand(captureShowCmd)

	captureShowCmd.Flags().BoolVar(&captureDump, "dump", false, "Print a hex dump of every payload")
}

// captureCmd groups commands that work on capture files
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Inspect frame capture files",
	Long: `Work with the JSON Lines files written by --capture-dir.

Each line of a capture file is one frame with its direction, type, FIN bit
and payload in hex and ASCII.`,
}

var captureShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the frames in a capture file",
	Example: `  wsclient capture show captures/capture-20250101-120000.jsonl
  wsclient capture show captures/capture-20250101-120000.jsonl --dump`,
	Args: cobra.ExactArgs(1),
	RunE: runCaptureShow,
}

func runCaptureShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	records, err := capture.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := ui.NewPrinter(out)
	p.PrintHeader("Capture", "wsclient capture show", map[string]string{
		"File": args[0],
	})

	for _, rec := range records {
		payload, err := rec.Payload()
		if err != nil {
			return fmt.Errorf("record %d: bad payload: %w", rec.MessageNum, err)
		}
		p.PrintFrame(ui.FrameLine{
			Time:      rec.Timestamp,
			Direction: rec.Direction,
			Type:      rec.Type(),
			FIN:       rec.FIN,
			Payload:   payload,
		})
		if captureDump && len(payload) > 0 {
			capture.HexDump(out, payload)
			p.Newline()
		}
	}

	s := capture.Summarize(records)
	details := map[string]string{
		"Frames":  fmt.Sprintf("%d (%d sent, %d received)", s.Records, s.Sent, s.Recv),
		"Payload": fmt.Sprintf("%d bytes", s.Bytes),
	}
	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		details["Type "+t] = fmt.Sprintf("%d", s.ByType[t])
	}

	p.Newline()
	p.PrintSuccess("Capture summary", details)
	return nil
}
