package store

import "net/http"

// Client for the remote record store. One client is shared by every
// operation against the same endpoint, requests carry the caller identity
// as a bearer token.
type Client struct {
	sink *http.Client

	// Normalized endpoint, no trailing slash
	baseURL string

	// Raw JWT presented on every request
	token string
}
