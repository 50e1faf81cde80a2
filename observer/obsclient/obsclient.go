// Package obsclient builds the HTTP clients used by probers.
package obsclient

import (
	"crypto/tls"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
)

// Client returns a new http.Client for a single probe. Every call builds its
// own transport, and keep-alives are off, so a probe's connection is closed
// as soon as its response has been handled.
//
// When insecure is true the client accepts any certificate chain and
// hostname. envcheck probes internal and staging endpoints whose certificates
// are not publicly trusted, so its probers always ask for this.
func Client(insecure bool) *http.Client {
	// Clone the default transport, because it comes with useful defaults that
	// are not just the http.Transport zero-values.
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = Dialer().DialContext
	t.DisableKeepAlives = true
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure} //nolint:gosec // see above

	// Spans are recorded, but the empty propagator keeps trace headers out
	// of the request.
	return &http.Client{Transport: otelhttp.NewTransport(t,
		otelhttp.WithPropagators(propagation.NewCompositeTextMapPropagator()),
	)}
}

// Dialer returns a custom dialer for use in probers. It disables IPv6-to-IPv4
// fallback so we don't mask failures of IPv6 connectivity.
func Dialer() *net.Dialer {
	return &net.Dialer{
		FallbackDelay: -1, // Disable IPv6-to-IPv4 fallback
	}
}
