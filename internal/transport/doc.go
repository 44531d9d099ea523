// Package transport acquires a TCP connection and performs the HTTP/1.1
// upgrade that turns it into a WebSocket byte stream.
//
// It knows nothing about frames. After a successful handshake the Conn hands
// out raw inbound bytes (including any that arrived behind the 101 response)
// and accepts outbound bytes through TryWrite, which makes exactly one write
// attempt and may accept only part of the buffer.
//
// # Handshake
//
//	GET /path HTTP/1.1
//	Host: example.com
//	Upgrade: websocket
//	Connection: Upgrade
//	Sec-WebSocket-Version: 13
//	Sec-WebSocket-Key: <16 random bytes, base64>
//
// Success is exactly HTTP 101. Any other status is reported as a
// *HandshakeError. Dial failures caused by deadlines or an unreachable peer
// are classified by IsTimeout.
//
// TLS is not supported; wss:// and https:// URLs are rejected.
package transport
