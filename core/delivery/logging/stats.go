package logging

import (
	"context"
	"sort"
)

// DestinationStats aggregates the log for one destination.
type DestinationStats struct {
	Destination string  `json:"destination"`
	Delivered   int     `json:"delivered"`
	Cancelled   int     `json:"cancelled"`
	Failed      int     `json:"failed"`
	WeightKG    float64 `json:"weight_kg"`
	Products    int     `json:"products"`
}

// Reduce aggregates records per destination, sorted by destination.
func Reduce(recs []Record) []DestinationStats {
	idx := map[string]*DestinationStats{}
	for _, r := range recs {
		s, ok := idx[r.Destination]
		if !ok {
			s = &DestinationStats{Destination: r.Destination}
			idx[r.Destination] = s
		}
		switch r.Outcome {
		case Delivered:
			s.Delivered++
			s.WeightKG += r.WeightKG
			s.Products += r.Products
		case Cancelled:
			s.Cancelled++
		case Failed:
			s.Failed++
		}
	}
	out := make([]DestinationStats, 0, len(idx))
	for _, s := range idx {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}

// CountByDestination returns delivered task counts per destination.
func CountByDestination(ctx context.Context, store LogStore) (map[string]int, error) {
	recs, err := store.Query(ctx, Query{Outcome: Delivered})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, r := range recs {
		out[r.Destination]++
	}
	return out, nil
}
