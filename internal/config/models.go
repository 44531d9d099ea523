package config

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrEndpointNotFound is returned when a name does not match a saved endpoint.
var ErrEndpointNotFound = errors.New("endpoint not found")

// Registry represents the entire user configuration file.
// This stores saved WebSocket endpoints and client preferences.
type Registry struct {
	Version     int                  `yaml:"version"`
	Endpoints   map[string]*Endpoint `yaml:"endpoints,omitempty"` // Keyed by endpoint name
	Preferences *Preferences         `yaml:"preferences,omitempty"`
}

// Endpoint is a saved WebSocket server.
type Endpoint struct {
	URL            string            `yaml:"url"`
	Headers        map[string]string `yaml:"headers,omitempty"`         // Extra upgrade request headers
	ConnectTimeout int               `yaml:"connect_timeout,omitempty"` // Seconds, 0 = use preferences
	LastConnected  time.Time         `yaml:"last_connected,omitempty"`
	Notes          string            `yaml:"notes,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	LogLevel       string `yaml:"log_level,omitempty"`   // debug, info, warn, error
	ConnectTimeout int    `yaml:"connect_timeout"`       // Connect-phase deadline in seconds
	MaxBuffered    int    `yaml:"max_buffered"`          // Inbound reassembly cap in bytes, 0 = unbounded
	AutoReply      bool   `yaml:"auto_reply"`            // Answer pings and echo close
	CaptureDir     string `yaml:"capture_dir,omitempty"` // Directory for JSONL frame captures
}

func defaultPreferences() *Preferences {
	return &Preferences{
		ConnectTimeout: 10,
		MaxBuffered:    16 << 20,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Endpoints:   make(map[string]*Endpoint),
		Preferences: defaultPreferences(),
	}
}

// GetEndpoint retrieves an endpoint by name.
// Returns nil if the endpoint doesn't exist in the registry.
func (r *Registry) GetEndpoint(name string) *Endpoint {
	return r.Endpoints[name]
}

// EnsureEndpoint ensures an endpoint entry exists in the registry.
// Returns the endpoint entry (existing or newly created).
func (r *Registry) EnsureEndpoint(name string) *Endpoint {
	if r.Endpoints == nil {
		r.Endpoints = make(map[string]*Endpoint)
	}

	if ep, exists := r.Endpoints[name]; exists {
		return ep
	}

	ep := &Endpoint{}
	r.Endpoints[name] = ep
	return ep
}

// SetEndpointURL sets the URL of an endpoint, creating it if needed.
func (r *Registry) SetEndpointURL(name, url string) {
	r.EnsureEndpoint(name).URL = url
}

// SetEndpointHeader sets a request header for an endpoint.
// An empty value removes the header.
func (r *Registry) SetEndpointHeader(name, key, value string) {
	ep := r.EnsureEndpoint(name)
	key = http.CanonicalHeaderKey(key)

	if value == "" {
		delete(ep.Headers, key)
		return
	}
	if ep.Headers == nil {
		ep.Headers = make(map[string]string)
	}
	ep.Headers[key] = value
}

// RemoveEndpoint deletes an endpoint. It reports whether the endpoint existed.
func (r *Registry) RemoveEndpoint(name string) bool {
	if _, exists := r.Endpoints[name]; !exists {
		return false
	}
	delete(r.Endpoints, name)
	return true
}

// TouchEndpoint records a successful connection to an endpoint.
func (r *Registry) TouchEndpoint(name string) {
	if ep := r.Endpoints[name]; ep != nil {
		ep.LastConnected = time.Now()
	}
}

// EndpointNames returns the saved endpoint names in sorted order.
func (r *Registry) EndpointNames() []string {
	names := make([]string, 0, len(r.Endpoints))
	for name := range r.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveURL turns a URL or an endpoint name into a URL plus request headers.
// Anything containing "://" is treated as a URL and returned unchanged.
func (r *Registry) ResolveURL(nameOrURL string) (string, http.Header, error) {
	if strings.Contains(nameOrURL, "://") {
		return nameOrURL, nil, nil
	}

	ep := r.Endpoints[nameOrURL]
	if ep == nil {
		return "", nil, fmt.Errorf("%w: %q", ErrEndpointNotFound, nameOrURL)
	}
	if ep.URL == "" {
		return "", nil, fmt.Errorf("endpoint %q has no URL", nameOrURL)
	}

	var header http.Header
	if len(ep.Headers) > 0 {
		header = make(http.Header, len(ep.Headers))
		for k, v := range ep.Headers {
			header.Set(k, v)
		}
	}
	return ep.URL, header, nil
}

// ConnectTimeout returns the connect deadline for an endpoint, falling back to
// the preferences. name may be empty.
func (r *Registry) ConnectTimeout(name string) time.Duration {
	if ep := r.Endpoints[name]; ep != nil && ep.ConnectTimeout > 0 {
		return time.Duration(ep.ConnectTimeout) * time.Second
	}
	if r.Preferences != nil && r.Preferences.ConnectTimeout > 0 {
		return time.Duration(r.Preferences.ConnectTimeout) * time.Second
	}
	return time.Duration(defaultPreferences().ConnectTimeout) * time.Second
}
