// Package urls provides centralized constants for the reference URLs used
// throughout the application.
//
// Usage:
//
//	import "github.com/muurk/wsclient/internal/urls"
//
//	fmt.Printf("For more information, see: %s\n", urls.OpeningHandshake)
package urls
