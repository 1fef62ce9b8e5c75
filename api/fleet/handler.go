// Package fleet serves read-only views of the vehicles and the hub stock.
package fleet

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/kilianp07/logisim/core/vehicle"
)

// Lister returns the registered vehicles.
type Lister interface {
	Fleet() []*vehicle.Vehicle
}

// NewStatusHandler returns an HTTP handler exposing vehicle snapshots via GET /api/fleet/status.
// The kind, location and status query parameters filter the result.
func NewStatusHandler(fleet Lister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		var kind vehicle.Kind
		if k := q.Get("kind"); k != "" {
			parsed, ok := vehicle.ParseKind(k)
			if !ok {
				http.Error(w, "unknown kind", http.StatusBadRequest)
				return
			}
			kind = parsed
		}
		location := q.Get("location")
		status := vehicle.Status(q.Get("status"))

		out := []vehicle.Snapshot{}
		for _, v := range fleet.Fleet() {
			s := v.Snapshot()
			if kind != "" && s.Kind != kind {
				continue
			}
			if location != "" && !strings.EqualFold(s.Location, location) {
				continue
			}
			if status != "" && s.Status != status {
				continue
			}
			out = append(out, s)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		writeJSON(w, out)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
