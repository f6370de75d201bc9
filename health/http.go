package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the checker's report as JSON. The response is 200
// unless some dependency is presumed broken (an open circuit), in which
// case it is 503 with the report body identifying which one.
func Handler(checker *RegistryChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := checker.Check()

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(report)
	})
}
