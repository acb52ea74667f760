package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// New returns a resty client honoring proxy settings from the
// environment. Callers layer their own retry policy on top.
func New(timeout time.Duration) *resty.Client {
	return resty.New().SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}).SetTimeout(timeout)
}
