package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Service represents a WebSocket server found on the network
type Service struct {
	// Instance is the advertised service instance name (e.g., "Living Room Hub")
	Instance string

	// Hostname is the mDNS hostname (e.g., "hub.local.")
	Hostname string

	// IP is the address to connect to, IPv4 preferred
	IP string

	// Port is the TCP port (80 if not advertised)
	Port int

	// Path is the request path from the "path" TXT record, "/" if absent
	Path string

	// Metadata contains all mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, s.URL())
}

// URL returns the ws:// URL for the service
func (s *Service) URL() string {
	path := s.Path
	if path == "" {
		path = "/"
	}
	return "ws://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// parseTXT splits "key=value" TXT records. Keys without a value map to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		if key == "" {
			continue
		}
		metadata[key] = value
	}
	return metadata
}
