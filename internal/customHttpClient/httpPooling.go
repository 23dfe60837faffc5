package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/rpillai/docuchat/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetPooledClient is shared by the Gemini embedding and generation clients so
// repeated calls reuse connections instead of paying handshake latency.
func GetPooledClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return client
}
