package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"tailpost/pkg/record"
)

// Inserts one record into the named table.
func (client *Client) Insert(ctx context.Context, table string, rec record.LogRecord) (err error) {
	if table == "" {
		err = fmt.Errorf("table name is required")
		return
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		err = fmt.Errorf("failed to serialize record: %v", err)
		return
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", client.baseURL, url.PathEscape(table))
	err = client.sendJSON(ctx, http.MethodPost, endpoint, payload)
	return
}

// Overwrites columns of the single row matching the given id.
func (client *Client) UpdateRow(ctx context.Context, table string, id string, fields map[string]any) (err error) {
	if table == "" {
		err = fmt.Errorf("table name is required")
		return
	}
	if id == "" {
		err = fmt.Errorf("row id is required")
		return
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		err = fmt.Errorf("failed to serialize row update: %v", err)
		return
	}

	filter := url.Values{"id": []string{"eq." + id}}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", client.baseURL, url.PathEscape(table), filter.Encode())
	err = client.sendJSON(ctx, http.MethodPatch, endpoint, payload)
	return
}
