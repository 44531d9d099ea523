package urls

// Reference URLs shown in help text and troubleshooting hints

// RFC6455 is The WebSocket Protocol RFC.
const RFC6455 = "https://www.rfc-editor.org/rfc/rfc6455"

// OpeningHandshake describes the HTTP upgrade exchange, useful when a
// server rejects the connection.
const OpeningHandshake = "https://www.rfc-editor.org/rfc/rfc6455#section-4"

// CloseStatusCodes lists the status codes carried in Close frames.
const CloseStatusCodes = "https://www.rfc-editor.org/rfc/rfc6455#section-7.4"

// DNSSD is the DNS-based service discovery RFC used by the
// discover command.
const DNSSD = "https://www.rfc-editor.org/rfc/rfc6763"

// ServiceNames is the IANA registry where the "ws" service name is listed.
const ServiceNames = "https://www.iana.org/assignments/service-names-port-numbers/"
