package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wsclient/internal/discovery"
	"github.com/muurk/wsclient/internal/session"
	"github.com/muurk/wsclient/internal/ui"
	"github.com/muurk/wsclient/internal/urls"
)

// Discover command flags
var (
	scanTimeout time.Duration
	serviceType string
	listOnly    bool
	saveAs      string
	waitName    string
)

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to listen for mDNS answers")
	discoverCmd.Flags().StringVar(&serviceType, "service", discovery.ServiceType, "DNS-SD service type to browse")
	discoverCmd.Flags().BoolVar(&listOnly, "list", false, "Print the services found instead of opening the picker")
	discoverCmd.Flags().StringVar(&saveAs, "save", "", "Save the chosen (or only) service as a named endpoint")
	discoverCmd.Flags().StringVar(&waitName, "name", "", "Wait for the service instance with this name and connect to it")
}

// discoverCmd finds WebSocket servers on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find WebSocket servers on the local network",
	Long: `Browse for WebSocket servers advertised over mDNS/DNS-SD.

Servers are expected to advertise the _ws._tcp service type, optionally with
a "path" TXT record holding the request path.

On a terminal a picker opens and the chosen server is connected to. Use
--list to print the results instead.`,
	Example: `  # Pick a server and connect
  wsclient discover

  # Print what is out there
  wsclient discover --list --scan-timeout 10s

  # Save a discovered server as an endpoint
  wsclient discover --save hub

  # Wait for a known server to come up, then connect
  wsclient discover --name "Living Room Hub" --scan-timeout 30s`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout
	scanner.ServiceType = serviceType

	interactive := ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)

	if waitName != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for %q (timeout: %s)...\n", waitName, scanTimeout)
		svc, err := scanner.WaitForService(ctx, waitName)
		if err != nil {
			return err
		}
		if saveAs != "" {
			if err := saveEndpoint(saveAs, svc.URL(), "Found by discover: "+svc.Instance); err != nil {
				return err
			}
		}
		t, err := resolveTarget(registry, svc.URL())
		if err != nil {
			return err
		}
		return connectTo(ctx, cmd, t, interactive)
	}

	if interactive && !listOnly {
		url, ok, err := session.Pick(ctx, scanner.Scan, scanTimeout)
		if err != nil || !ok {
			return err
		}
		if saveAs != "" {
			if err := saveEndpoint(saveAs, url, "Found by discover"); err != nil {
				return err
			}
		}
		t, err := resolveTarget(registry, url)
		if err != nil {
			return err
		}
		return connectTo(ctx, cmd, t, true)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for %s services (timeout: %s)...\n\n", serviceType, scanTimeout)

	services, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(services) == 0 {
		p := ui.NewPrinter(out)
		p.PrintWarning("No services found", map[string]string{
			"Service": serviceType,
			"Timeout": scanTimeout.String(),
		})
		p.PrintLines(
			"Troubleshooting:",
			"  - Servers must advertise "+serviceType+" over mDNS",
			"  - Multicast must be allowed between you and the server",
			"  - Try increasing --scan-timeout for slower networks",
			"  - DNS-SD: "+urls.DNSSD,
		)
		return nil
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Instance < services[j].Instance })

	fmt.Fprintf(out, "Found %d service(s):\n\n", len(services))
	for i, svc := range services {
		fmt.Fprintf(out, "%d. %s\n", i+1, svc.Instance)
		fmt.Fprintf(out, "   URL:      %s\n", svc.URL())
		fmt.Fprintf(out, "   Host:     %s\n", strings.TrimSuffix(svc.Hostname, "."))
		if len(svc.Metadata) > 0 {
			fmt.Fprintf(out, "   Metadata: %v\n", svc.Metadata)
		}
		fmt.Fprintln(out)
	}

	if saveAs != "" {
		if len(services) != 1 {
			return fmt.Errorf("--save needs exactly one service, found %d", len(services))
		}
		if err := saveEndpoint(saveAs, services[0].URL(), "Found by discover: "+services[0].Instance); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved as endpoint %q\n", saveAs)
		return nil
	}

	fmt.Fprintln(out, "Use 'wsclient connect <url>' to open a session")
	return nil
}
