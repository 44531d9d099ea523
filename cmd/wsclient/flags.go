package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wsclient/internal/capture"
	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/config"
	"github.com/muurk/wsclient/internal/logging"
)

// Connection flags shared by all commands (persistent on root)
var (
	logLevel    string
	timeout     time.Duration
	headerFlags []string
	maxBuffered int
	autoReply   bool
	captureDir  string
	binaryMode  bool
	sendBuffer  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent if unset")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Connect timeout (default from config, 10s)")
	rootCmd.PersistentFlags().StringArrayVarP(&headerFlags, "header", "H", nil, `Extra upgrade request header "Key: Value" (repeatable)`)
	rootCmd.PersistentFlags().IntVar(&maxBuffered, "max-buffered", 0, "Largest incoming frame in bytes (default from config, 16MiB)")
	rootCmd.PersistentFlags().BoolVar(&autoReply, "auto-reply", false, "Answer pings and echo the server's close frame")
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture-dir", "", "Write every frame to a JSONL file in this directory")
	rootCmd.PersistentFlags().BoolVar(&binaryMode, "binary", false, "Send messages as binary frames")
	rootCmd.PersistentFlags().IntVar(&sendBuffer, "send-buffer", 0, "Socket send buffer size in bytes (0 = system default)")
}

// registry is the user configuration, loaded by setup
var registry *config.Registry

// setup initializes logging and loads the endpoint registry before any
// command runs.
func setup(cmd *cobra.Command, args []string) error {
	reg, err := config.GetGlobalRegistry()
	if err != nil {
		// A broken config file should not block one-off connections
		reg = config.NewRegistry()
		defer logging.Warn("Ignoring unreadable config", zap.Error(err))
	}
	registry = reg

	level := logLevel
	if level == "" && reg.Preferences != nil {
		level = reg.Preferences.LogLevel
	}
	if level == "" {
		return logging.InitializeFromEnv()
	}
	return logging.Initialize(level)
}

// parseHeaders converts repeated "Key: Value" flags into a header set.
func parseHeaders(values []string) (http.Header, error) {
	if len(values) == 0 {
		return nil, nil
	}
	h := make(http.Header, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Key: Value\")", v)
		}
		h.Add(key, strings.TrimSpace(value))
	}
	return h, nil
}

// target is a resolved connection destination
type target struct {
	Name   string // Endpoint name, empty for a literal URL
	URL    string
	Header http.Header
}

// resolveTarget turns a URL or endpoint name plus the --header flags into a
// destination. Flag headers override endpoint headers.
func resolveTarget(reg *config.Registry, nameOrURL string) (*target, error) {
	url, header, err := reg.ResolveURL(nameOrURL)
	if err != nil {
		return nil, err
	}

	t := &target{URL: url, Header: header}
	if url != nameOrURL {
		t.Name = nameOrURL
	}

	extra, err := parseHeaders(headerFlags)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		if t.Header == nil {
			t.Header = make(http.Header, len(extra))
		}
		for k, v := range extra {
			t.Header[k] = v
		}
	}
	return t, nil
}

// clientOptions builds client options from flags, falling back to the
// endpoint and preference values in the registry.
func clientOptions(cmd *cobra.Command, reg *config.Registry, t *target) []client.Option {
	prefs := reg.Preferences
	if prefs == nil {
		prefs = &config.Preferences{}
	}

	connectTimeout := timeout
	if connectTimeout <= 0 {
		connectTimeout = reg.ConnectTimeout(t.Name)
	}

	maxBuf := prefs.MaxBuffered
	if cmd.Flags().Changed("max-buffered") {
		maxBuf = maxBuffered
	}

	reply := prefs.AutoReply
	if cmd.Flags().Changed("auto-reply") {
		reply = autoReply
	}

	opts := []client.Option{
		client.WithConnectTimeout(connectTimeout),
		client.WithMaxBuffered(maxBuf),
		client.WithAutoReply(reply),
	}
	if len(t.Header) > 0 {
		opts = append(opts, client.WithHeader(t.Header))
	}
	if sendBuffer > 0 {
		opts = append(opts, client.WithSendBufferSize(sendBuffer))
	}
	return opts
}

// openCapture starts a capture file when --capture-dir or the capture_dir
// preference is set. It returns nil when capturing is off.
func openCapture(reg *config.Registry, url string) (*capture.Writer, error) {
	dir := captureDir
	if dir == "" && reg.Preferences != nil {
		dir = reg.Preferences.CaptureDir
	}
	if dir == "" {
		return nil, nil
	}
	return capture.Open(dir, url)
}

// rememberEndpoint records a successful connection to a saved endpoint.
func rememberEndpoint(t *target) {
	if t.Name == "" {
		return
	}
	registry.TouchEndpoint(t.Name)
	if err := config.SaveGlobal(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}
}
