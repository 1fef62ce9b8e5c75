package deliveries

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/logisim/core/delivery/logging"
)

// NewLogHandler returns an HTTP handler exposing delivery logs via GET /api/deliveries/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		params := r.URL.Query()
		q := logging.Query{
			Destination: params.Get("destination"),
			VehicleID:   params.Get("vehicle_id"),
		}
		if o := params.Get("outcome"); o != "" {
			out, ok := outcomeFromString(o)
			if !ok {
				http.Error(w, "unknown outcome", http.StatusBadRequest)
				return
			}
			q.Outcome = out
		}
		var err error
		if q.FromHour, err = hourParam(params.Get("from_hour")); err != nil {
			http.Error(w, "invalid from_hour", http.StatusBadRequest)
			return
		}
		if q.ToHour, err = hourParam(params.Get("to_hour")); err != nil {
			http.Error(w, "invalid to_hour", http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func hourParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func outcomeFromString(s string) (logging.Outcome, bool) {
	switch logging.Outcome(s) {
	case logging.Delivered, logging.Cancelled, logging.Failed:
		return logging.Outcome(s), true
	default:
		return "", false
	}
}
