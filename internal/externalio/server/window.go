package server

import (
	"net/http"
	"strings"
	"time"
)

// Resolves starttime/endtime query parameters into a concrete window.
// Start accepts RFC3339Nano or a signed relative duration, where empty
// or unparseable relative forms fall back to the last minute. End
// accepts RFC3339Nano or "now". A malformed absolute time or a reversed
// window reports 400 and returns ok=false.
func queryWindow(serverResponder http.ResponseWriter, clientRequest *http.Request) (start, end time.Time, ok bool) {
	rawStart := clientRequest.FormValue("starttime")
	switch {
	case rawStart == "":
		start = time.Now().Add(-time.Minute)
	case rawStart[0] == '-' || rawStart[0] == '+':
		offset, parseErr := time.ParseDuration(rawStart)
		if parseErr != nil {
			// Unknown offset units fall back to the default window
			start = time.Now().Add(-time.Minute)
		} else {
			start = time.Now().Add(offset)
		}
	default:
		var parseErr error
		start, parseErr = time.Parse(time.RFC3339Nano, rawStart)
		if parseErr != nil {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	rawEnd := clientRequest.FormValue("endtime")
	if rawEnd == "" || rawEnd == "now" {
		end = time.Now()
	} else {
		var parseErr error
		end, parseErr = time.Parse(time.RFC3339Nano, rawEnd)
		if parseErr != nil {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	if start.After(end) {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	ok = true
	return
}

// Namespace prefix from the path below the route. Bare routes and
// trailing slashes produce a nil prefix rather than empty segments.
func pathNamespace(path, routePrefix string) (namespace []string) {
	raw := strings.Trim(strings.TrimPrefix(path, routePrefix), "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}
