package fetchurl

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewClient builds an *http.Client honouring the config:verify_ssl toggle
// When verifySSL is false, certificate checks are disabled on the
// transport.
func NewClient(verifySSL bool, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !verifySSL {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{} //nolint:gosec // explicit opt-out via config:verify_ssl
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// follow redirects transparently up to the default limit (10)
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}

			return nil
		},
	}
}
