// HTTP surface for metric discovery and querying, local machine only
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

// Help page template baked in at compile time
//
//go:embed static-files/metric-help.html
var webFiles embed.FS

// Builds the query server with its three routes plus the root help page.
// The caller owns starting and shutting it down.
func SetupListener(ctx context.Context, port int, search DataSearcher, discover Discoverer, aggregation AggSearcher) (server *http.Server, err error) {
	helpPage, err := renderHelpPage(port)
	if err != nil {
		return
	}

	getOnly := func(handler http.HandlerFunc) http.HandlerFunc {
		return func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			if clientRequest.Method != http.MethodGet {
				serverResponder.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handler(serverResponder, clientRequest)
		}
	}

	requestMultiplexer := http.NewServeMux()

	// Help page sits at the root, anything deeper is unknown
	requestMultiplexer.HandleFunc("/", getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}

		serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write(helpPage)
	}))

	requestMultiplexer.HandleFunc(global.DiscoveryPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleDiscovery(ctx, discover, serverResponder, clientRequest)
	}))

	requestMultiplexer.HandleFunc(global.DataPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleData(ctx, search, serverResponder, clientRequest)
	}))

	requestMultiplexer.HandleFunc(global.AggregationPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleAggregation(ctx, aggregation, serverResponder, clientRequest)
	}))

	server = &http.Server{
		Addr:         net.JoinHostPort(global.HTTPListenAddr, strconv.Itoa(port)),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(logBridge{ctx: ctx}, "", 0),
	}

	return
}

// Fills the embedded help page with the live listen address and routes
func renderHelpPage(port int) (page []byte, err error) {
	page, err = webFiles.ReadFile("static-files/metric-help.html")
	if err != nil {
		err = fmt.Errorf("failed reading metric help html page from internal fs: %v", err)
		return
	}

	replacements := map[string]string{
		"@@LISTEN_ADDR@@":      global.HTTPListenAddr,
		"@@LISTEN_PORT@@":      strconv.Itoa(port),
		"@@DATA_PATH@@":        global.DataPath,
		"@@DISCOVER_PATH@@":    global.DiscoveryPath,
		"@@AGGREGATION_PATH@@": global.AggregationPath,
	}
	for placeholder, value := range replacements {
		page = bytes.Replace(page, []byte(placeholder), []byte(value), 1)
	}
	return
}

// Serves queries until the daemon shuts the server down. Blocks, callers
// run it on its own goroutine.
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Metric query server listening on %s (http://%s/)\n", server.Addr, server.Addr)

	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server stopped: %v\n", err)
	}
}

// Writes the content as a JSON response body with a trailing newline
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	body, err := json.Marshal(content)
	if err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed to encode metric response: %v\n", err)
		return
	}

	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(append(body, '\n'))
}

// Forwards http.Server complaints into the buffered log
func (bridge logBridge) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(bridge.ctx, global.VerbosityStandard, global.ErrorLog, "%s\n", strings.TrimSpace(string(p)))
	return
}
