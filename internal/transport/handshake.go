package transport

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/muurk/wsclient/internal/version"
)

// Handshake header names and values
const (
	HeaderUpgrade       = "Upgrade"
	HeaderConnection    = "Connection"
	HeaderKey           = "Sec-WebSocket-Key"
	HeaderVersion       = "Sec-WebSocket-Version"
	HeaderAccept        = "Sec-WebSocket-Accept"
	ProtocolVersion     = "13"
	webSocketGUID       = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	upgradeValue        = "websocket"
	connectionValue     = "Upgrade"
	handshakeKeyEntropy = 16
)

// HandshakeError reports a completed HTTP exchange whose status was not 101.
type HandshakeError struct {
	StatusCode int
	Status     string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake rejected: %s", e.Status)
}

// GenerateKey returns a fresh Sec-WebSocket-Key value.
func GenerateKey() (string, error) {
	b := make([]byte, handshakeKeyEntropy)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate handshake key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ComputeAcceptKey computes the Sec-WebSocket-Accept value for a client key.
func ComputeAcceptKey(key string) string {
	h := sha1.Sum([]byte(key + webSocketGUID))
	return base64.StdEncoding.EncodeToString(h[:])
}

// newUpgradeRequest builds the GET request that asks the server to switch
// protocols. Custom headers replace defaults with the same name.
func newUpgradeRequest(u *url.URL, key string, custom http.Header) *http.Request {
	req := &http.Request{
		Method:     http.MethodGet,
		URL:        &url.URL{Scheme: "http", Host: u.Host, Path: u.Path, RawPath: u.RawPath, RawQuery: u.RawQuery},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Host:       u.Host,
	}
	req.Header.Set(HeaderUpgrade, upgradeValue)
	req.Header.Set(HeaderConnection, connectionValue)
	req.Header.Set(HeaderVersion, ProtocolVersion)
	req.Header.Set(HeaderKey, key)
	req.Header.Set("User-Agent", version.UserAgent())

	for k, vs := range custom {
		if len(vs) == 0 {
			continue
		}
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return req
}

// checkUpgradeResponse validates the server response. Only the status code
// decides success; header anomalies are returned as warnings.
func checkUpgradeResponse(resp *http.Response, key string) (warnings []string, err error) {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, &HandshakeError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if !strings.EqualFold(resp.Header.Get(HeaderUpgrade), upgradeValue) {
		warnings = append(warnings, fmt.Sprintf("unexpected Upgrade header %q", resp.Header.Get(HeaderUpgrade)))
	}
	if !headerContainsToken(resp.Header, HeaderConnection, "upgrade") {
		warnings = append(warnings, fmt.Sprintf("unexpected Connection header %q", resp.Header.Get(HeaderConnection)))
	}
	if accept := resp.Header.Get(HeaderAccept); accept != ComputeAcceptKey(key) {
		warnings = append(warnings, fmt.Sprintf("Sec-WebSocket-Accept mismatch (got %q)", accept))
	}
	return warnings, nil
}

// headerContainsToken checks if the comma-separated header contains token (case-insensitive).
func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// flattenHeaders joins multi-value headers for logging.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}
