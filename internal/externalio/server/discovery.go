package server

import (
	"context"
	"net/http"
	"strings"
	"tailpost/internal/global"
	"tailpost/internal/metrics"
)

// Lists known metric series without sample data
func handleDiscovery(baseCtx context.Context, discover Discoverer, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqNamespace := pathNamespace(clientRequest.URL.Path, global.DiscoveryPath)

	reqName := clientRequest.FormValue("name")
	reqDescription := clientRequest.FormValue("description")
	reqUnit := clientRequest.FormValue("unit")

	reqType := metrics.MetricType(strings.ToLower(clientRequest.FormValue("type")))
	switch reqType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
		// Empty means any type
	default:
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	var results []metrics.JMetric
	for _, match := range discover(reqName, reqDescription, reqNamespace, reqUnit, reqType) {
		results = append(results, match.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
		return
	}
	jResp(baseCtx, serverResponder, results)
}
