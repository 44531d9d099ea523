package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantURL      string
	}{
		{
			name: "IPv4 with path",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Living Room Hub"},
				HostName:      "hub.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/events", "version=2"},
			},
			wantInstance: "Living Room Hub",
			wantURL:      "ws://192.168.4.16:8080/events",
		},
		{
			name: "path without leading slash",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "chat"},
				HostName:      "chat.local.",
				Port:          9000,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
				Text:          []string{"path=ws"},
			},
			wantInstance: "chat",
			wantURL:      "ws://10.0.0.5:9000/ws",
		},
		{
			name: "no port defaults to 80",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "plain"},
				HostName:      "plain.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantInstance: "plain",
			wantURL:      "ws://172.16.0.1:80/",
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "six"},
				HostName:      "six.local.",
				Port:          80,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantInstance: "six",
			wantURL:      "ws://[fe80::1]:80/",
		},
		{
			name: "both families prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "dual"},
				HostName:      "dual.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantInstance: "dual",
			wantURL:      "ws://192.168.1.50:80/",
		},
		{
			name: "instance falls back to hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "bare.local.",
				Port:     81,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.2")},
			},
			wantInstance: "bare.local",
			wantURL:      "ws://192.168.1.2:81/",
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost"},
				HostName:      "ghost.local.",
				Port:          80,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if svc != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("parseServiceEntry() = nil, want service")
			}
			if svc.Instance != tt.wantInstance {
				t.Errorf("Instance = %v, want %v", svc.Instance, tt.wantInstance)
			}
			if got := svc.URL(); got != tt.wantURL {
				t.Errorf("URL() = %v, want %v", got, tt.wantURL)
			}
			if svc.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/a=b", "flag", "empty=", "=novalue"})

	want := map[string]string{"path": "/a=b", "flag": "", "empty": ""}
	if len(got) != len(want) {
		t.Fatalf("parseTXT() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestService_Methods(t *testing.T) {
	svc := &Service{
		Instance: "hub",
		Hostname: "hub.local.",
		IP:       "192.168.1.9",
		Port:     8080,
		Metadata: map[string]string{"version": "2"},
	}

	if got := svc.URL(); got != "ws://192.168.1.9:8080/" {
		t.Errorf("URL() = %v, want ws://192.168.1.9:8080/", got)
	}
	if got := svc.String(); got != "hub (hub.local.) at ws://192.168.1.9:8080/" {
		t.Errorf("String() = %v", got)
	}
	if got := svc.GetMetadata("version"); got != "2" {
		t.Errorf("GetMetadata(version) = %v, want 2", got)
	}
	if got := (&Service{}).GetMetadata("x"); got != "" {
		t.Errorf("GetMetadata on nil map = %v, want empty", got)
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
	if s.ServiceType != "_ws._tcp" {
		t.Errorf("ServiceType = %v, want _ws._tcp", s.ServiceType)
	}
}

// TestScan_Integration requires a network with multicast. Skipped in short mode.
func TestScan_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mDNS integration test in short mode")
	}

	s := NewScanner()
	s.Timeout = 500 * time.Millisecond

	services, err := s.Scan(t.Context())
	if err != nil {
		t.Skipf("mDNS unavailable: %v", err)
	}
	for _, svc := range services {
		t.Logf("found %s", svc)
	}
}

// TestWaitForService_Integration advertises a service on the local network and
// waits for it by name. Skipped in short mode or without multicast.
func TestWaitForService_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mDNS integration test in short mode")
	}

	server, err := zeroconf.Register("wsclient test echo", ServiceType, ServiceDomain, 8765, []string{"path=/echo"}, nil)
	if err != nil {
		t.Skipf("mDNS register unavailable: %v", err)
	}
	defer server.Shutdown()

	s := NewScanner()
	s.Timeout = 2 * time.Second

	svc, err := s.WaitForService(t.Context(), "WSCLIENT TEST ECHO")
	if err != nil {
		t.Skipf("service not seen, multicast likely unavailable: %v", err)
	}
	if svc.Port != 8765 {
		t.Errorf("Port = %d, want 8765", svc.Port)
	}
	if svc.Path != "/echo" {
		t.Errorf("Path = %q, want %q", svc.Path, "/echo")
	}
}
