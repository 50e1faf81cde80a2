package probers

import (
	"context"
	"net/http"

	"github.com/jmhodges/clock"

	berrors "github.com/eastcoast-online/envcheck/errors"
	"github.com/eastcoast-online/envcheck/observer/obsclient"
	"github.com/eastcoast-online/envcheck/observer/probers"
)

// ClientFunc builds the client used for one probe.
type ClientFunc func() *http.Client

// HTTPProbe is the `Prober` for plain HTTP GET health checks.
type HTTPProbe struct {
	url       string
	clk       clock.Clock
	newClient ClientFunc
}

var _ probers.Prober = HTTPProbe{}

// New returns an HTTPProbe for url. A nil newClient selects an insecure
// obsclient, which accepts self-signed and otherwise invalid certificates.
func New(url string, clk clock.Clock, newClient ClientFunc) HTTPProbe {
	if newClient == nil {
		newClient = func() *http.Client { return obsclient.Client(true) }
	}
	return HTTPProbe{url: url, clk: clk, newClient: newClient}
}

// Name returns the probed URL.
func (p HTTPProbe) Name() string {
	return p.url
}

// Kind returns a name that uniquely identifies the `Kind` of `Prober`.
func (p HTTPProbe) Kind() string {
	return "HTTP"
}

// Probe issues a GET without custom headers or body. The latency covers the
// time from just before the request is sent until the response headers have
// been received, or until the request failed; the body is never read.
func (p HTTPProbe) Probe(ctx context.Context) (probers.Result, error) {
	result := probers.Result{URL: p.url}

	client := p.newClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return result, berrors.TransportError(err, "building request")
	}

	start := p.clk.Now()
	resp, err := client.Do(req)
	result.Latency = p.clk.Since(start)
	if err != nil {
		return result, berrors.TransportError(err, "health check failed")
	}
	_ = resp.Body.Close()

	result.StatusCode = resp.StatusCode
	return result, nil
}
