// Package ui provides terminal output components for the wsclient CLI.
//
// This package uses Lipgloss to render styled output for non-interactive
// commands. Components follow a "print and move on" pattern:
//
//   - Header: Command banner showing the operation and its parameters
//   - Result: Success/failure/warning boxes with details and troubleshooting tips
//   - FrameLine: One line per sent or received frame
//
// Printer writes these components to any io.Writer, so commands can be
// tested against a bytes.Buffer.
//
// # Logging Integration
//
// This package expects logging to be controlled via the WSCLIENT_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
