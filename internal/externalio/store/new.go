package store

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"tailpost/internal/global"
	"time"
)

// Creates a new store client. No connection probe happens here, delivery
// retries own the unavailability handling.
func New(endpoint string, token string) (client *Client, err error) {
	if endpoint == "" {
		err = fmt.Errorf("store endpoint URL is required")
		return
	}
	if token == "" {
		err = fmt.Errorf("store access token is required")
		return
	}

	baseURL, err := url.Parse(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid store URL: %v", err)
		return
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		err = fmt.Errorf("invalid store URL: scheme must be http or https")
		return
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	client = &Client{
		sink: &http.Client{
			Transport: transport,
			Timeout:   global.DefaultStoreTimeout,
		},
		baseURL: strings.TrimRight(baseURL.String(), "/"),
		token:   token,
	}
	return
}
