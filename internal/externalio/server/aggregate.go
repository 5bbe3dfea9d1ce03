package server

import (
	"context"
	"net/http"
	"tailpost/internal/global"
)

// Serves one summary value computed across every matching sample
func handleAggregation(baseCtx context.Context, search AggSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqNamespace := pathNamespace(clientRequest.URL.Path, global.AggregationPath)
	reqName := clientRequest.FormValue("name")
	aggType := clientRequest.FormValue("aggregation")

	start, end, ok := queryWindow(serverResponder, clientRequest)
	if !ok {
		return
	}

	result, err := search(aggType, reqName, reqNamespace, start, end)
	if err != nil {
		jResp(baseCtx, serverResponder, Jerror{Msg: err.Error()})
		return
	}
	jResp(baseCtx, serverResponder, result.Convert())
}
