package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wsclient/internal/config"
	"github.com/muurk/wsclient/internal/transport"
	"github.com/muurk/wsclient/internal/ui"
)

var endpointNotes string

func init() {
	rootCmd.AddCommand(endpointCmd)

	endpointCmd.AddCommand(endpointListCmd)
	endpointCmd.AddCommand(endpointAddCmd)
	endpointCmd.AddCommand(endpointRemoveCmd)
	endpointCmd.AddCommand(endpointHeaderCmd)
	endpointCmd.AddCommand(endpointInitCmd)

	endpointAddCmd.Flags().StringVar(&endpointNotes, "notes", "", "Free-form notes about the endpoint")
}

// endpointCmd groups the saved endpoint commands
var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage saved endpoints",
	Long: `Save WebSocket servers under short names.

A saved name can be used anywhere a URL is accepted. Endpoints are stored
in the wsclient config file together with any extra request headers.`,
}

var endpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		names := registry.EndpointNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "No saved endpoints. Add one with 'wsclient endpoint add <name> <url>'.")
			return nil
		}

		for _, name := range names {
			ep := registry.GetEndpoint(name)
			fmt.Fprintf(out, "%s\n", ui.SuccessTitleStyle.Render(name))
			fmt.Fprintf(out, "   URL:       %s\n", ep.URL)
			keys := make([]string, 0, len(ep.Headers))
			for k := range ep.Headers {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "   Header:    %s: %s\n", k, ep.Headers[k])
			}
			if !ep.LastConnected.IsZero() {
				fmt.Fprintf(out, "   Connected: %s\n", ep.LastConnected.Format(time.DateTime))
			}
			if ep.Notes != "" {
				fmt.Fprintf(out, "   Notes:     %s\n", ep.Notes)
			}
		}
		return nil
	},
}

var endpointAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Save an endpoint",
	Example: `  wsclient endpoint add echo ws://localhost:8080/echo
  wsclient endpoint add hub ws://192.168.1.20:8080/ws --notes "Living room"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := saveEndpoint(args[0], args[1], endpointNotes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved endpoint %q -> %s\n", args[0], args[1])
		return nil
	},
}

var endpointRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a saved endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !registry.RemoveEndpoint(args[0]) {
			return fmt.Errorf("%w: %q", config.ErrEndpointNotFound, args[0])
		}
		if err := config.SaveGlobal(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed endpoint %q\n", args[0])
		return nil
	},
}

var endpointHeaderCmd = &cobra.Command{
	Use:   "header <name> <key> [value]",
	Short: "Set or clear a request header for an endpoint",
	Long: `Set an extra header sent with the upgrade request to an endpoint.
Leave out the value to remove the header.`,
	Example: `  wsclient endpoint header hub Authorization "Bearer abc"
  wsclient endpoint header hub Authorization`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, key := args[0], args[1]
		if registry.GetEndpoint(name) == nil {
			return fmt.Errorf("%w: %q", config.ErrEndpointNotFound, name)
		}
		if strings.ContainsAny(key, " :\r\n") {
			return fmt.Errorf("invalid header name %q", key)
		}

		value := ""
		if len(args) == 3 {
			value = args[2]
		}
		registry.SetEndpointHeader(name, key, value)
		return config.SaveGlobal()
	},
}

var endpointInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with an example endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if len(registry.Endpoints) > 0 {
			return fmt.Errorf("config at %s already has endpoints", path)
		}
		if err := config.CreateDefaultConfig(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

// saveEndpoint validates url and stores it under name.
func saveEndpoint(name, url, notes string) error {
	if name == "" || strings.Contains(name, "://") {
		return fmt.Errorf("invalid endpoint name %q", name)
	}
	if _, err := transport.ParseURL(url); err != nil {
		return err
	}

	registry.SetEndpointURL(name, url)
	if notes != "" {
		registry.EnsureEndpoint(name).Notes = notes
	}
	return config.SaveGlobal()
}
