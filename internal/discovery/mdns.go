package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/wsclient/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type WebSocket servers advertise
	ServiceType = "_ws._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry advertises no port
	DefaultPort = 80

	// pathKey is the TXT record key holding the request path
	pathKey = "path"
)

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for services
	Timeout time.Duration

	// ServiceType overrides the browsed service type
	ServiceType string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:     DefaultScanTimeout,
		ServiceType: ServiceType,
	}
}

// Scan discovers WebSocket services until the timeout or ctx ends.
// Entries advertised more than once are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		seen     = make(map[string]bool)
		services = make([]*Service, 0)
	)

	err := s.browse(ctx, func(svc *Service) bool {
		mu.Lock()
		defer mu.Unlock()
		if seen[svc.Instance] {
			return true
		}
		seen[svc.Instance] = true
		services = append(services, svc)
		return true
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Service(nil), services...), nil
}

// WaitForService waits for a service whose instance name matches name
// (case-insensitive).
func (s *Scanner) WaitForService(ctx context.Context, name string) (*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(chan *Service, 1)
	err := s.browse(ctx, func(svc *Service) bool {
		if !strings.EqualFold(svc.Instance, name) {
			return true
		}
		select {
		case found <- svc:
		default:
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case svc := <-found:
		return svc, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("service %q not found within timeout", name)
	}
}

// browse starts an mDNS browse and calls fn for every parsed entry until fn
// returns false or ctx ends.
func (s *Scanner) browse(ctx context.Context, fn func(*Service) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	serviceType := s.ServiceType
	if serviceType == "" {
		serviceType = ServiceType
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		// Keep draining after fn is done so the resolver never blocks
		stopped := false
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := parseServiceEntry(entry)
				if svc == nil || stopped {
					continue
				}
				logging.Debug("Discovered WebSocket service",
					zap.String("instance", svc.Instance),
					zap.String("url", svc.URL()),
				)
				stopped = !fn(svc)
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, serviceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Service.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := parseTXT(entry.Text)
	path := metadata[pathKey]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	instance := entry.Instance
	if instance == "" {
		instance = strings.TrimSuffix(entry.HostName, ".")
	}

	return &Service{
		Instance:     instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         path,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
