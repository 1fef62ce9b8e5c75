package fleet

import (
	"net/http"

	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/model"
)

// Stock is the part of the warehouse the inventory view reads.
type Stock interface {
	Name() string
	MaxCapacity() float64
	CurrentLoad() float64
	OccupancyPercent() float64
	TotalUnits() int
	Summary() map[model.Category]inventory.CategoryStats
}

// InventoryView is the body served by NewInventoryHandler.
type InventoryView struct {
	Warehouse  string                                     `json:"warehouse"`
	CapacityKG float64                                    `json:"capacity_kg"`
	LoadKG     float64                                    `json:"load_kg"`
	Occupancy  float64                                    `json:"occupancy_pct"`
	Units      int                                        `json:"units"`
	Categories map[model.Category]inventory.CategoryStats `json:"categories"`
}

// NewInventoryHandler exposes the hub stock via GET /api/inventory.
func NewInventoryHandler(stock Stock) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		view := InventoryView{
			Warehouse:  stock.Name(),
			CapacityKG: stock.MaxCapacity(),
			LoadKG:     stock.CurrentLoad(),
			Occupancy:  stock.OccupancyPercent(),
			Units:      stock.TotalUnits(),
			Categories: stock.Summary(),
		}
		if c := r.URL.Query().Get("category"); c != "" {
			one := map[model.Category]inventory.CategoryStats{}
			if s, ok := view.Categories[model.Category(c)]; ok {
				one[model.Category(c)] = s
			}
			view.Categories = one
		}
		writeJSON(w, view)
	})
}
