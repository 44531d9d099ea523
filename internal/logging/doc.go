// Package logging provides structured logging for the WebSocket client.
//
// This package wraps a global zap logger with convenience functions for the
// events the client produces: connection lifecycle, handshake results and
// individual frames.
//
// # Log Levels
//
//   - Debug: frame contents, hex dumps, send/receive byte counts
//   - Info: connect, disconnect, handshake status
//   - Warn: partial sends, unexpected handshake headers, dropped peers
//   - Error: transport failures
//
// # Configuration
//
// Logging is silent until initialized. The CLI initializes it from the
// --log-level flag, falling back to the WSCLIENT_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Log lines go to stderr so they never interleave with received messages
// printed on stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
