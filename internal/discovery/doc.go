// Package discovery finds WebSocket servers on the local network over mDNS.
//
// Servers are expected to advertise the "_ws._tcp" service type. The optional
// "path" TXT record gives the request path; everything else in TXT is kept as
// metadata.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//	services, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, svc := range services {
//	    fmt.Println(svc.Instance, svc.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
