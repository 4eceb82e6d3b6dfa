package gateway

import (
	"net/http"
	"strconv"

	"github.com/tourwise/cms-client/pkg/resources"
)

// parseListParams reads the shared pagination query parameters. Omitted or
// malformed values stay zero so the backend applies its own defaults.
func parseListParams(r *http.Request) resources.ListParams {
	return resources.ListParams{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
