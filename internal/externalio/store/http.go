package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Sends one JSON payload to the store REST endpoint
func (client *Client) sendJSON(ctx context.Context, method string, endpoint string, payload []byte) (err error) {
	req, err := http.NewRequestWithContext(
		ctx,
		method,
		endpoint,
		bytes.NewReader(payload),
	)
	if err != nil {
		err = fmt.Errorf("failed request creation: %v", err)
		return
	}

	req.Header.Set("apikey", client.token)
	req.Header.Set("Authorization", "Bearer "+client.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal") // Response rows are never used

	resp, err := client.sink.Do(req)
	if err != nil {
		err = fmt.Errorf("failed HTTP request: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("received HTTP status '%s'", resp.Status)

		// PostgREST explains rejections in the body, carry that upward
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr == nil && len(body) > 0 {
			err = fmt.Errorf("%v: %s", err, string(body))
		}
		return
	}

	return
}
