package server

import (
	"context"
	"net/http"
	"tailpost/internal/global"
	"tailpost/internal/metrics"
)

// Serves raw samples from the registry for one time window
func handleData(baseCtx context.Context, search DataSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqNamespace := pathNamespace(clientRequest.URL.Path, global.DataPath)
	reqName := clientRequest.FormValue("name")

	start, end, ok := queryWindow(serverResponder, clientRequest)
	if !ok {
		return
	}

	var results []metrics.JMetric
	for _, match := range search(reqName, reqNamespace, start, end) {
		results = append(results, match.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
		return
	}
	jResp(baseCtx, serverResponder, results)
}
