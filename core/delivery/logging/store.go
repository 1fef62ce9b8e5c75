// Package logging keeps the append-only delivery log. Counters such as
// deliveries per destination are reduced from it on demand.
package logging

import (
	"context"
	"time"
)

// Outcome is the final state of a logged task. Failed marks a task the
// orchestrator cancelled after execution had started.
type Outcome string

const (
	Delivered Outcome = "delivered"
	Cancelled Outcome = "cancelled"
	Failed    Outcome = "failed"
)

// Record is one log entry, written when a task reaches an outcome.
type Record struct {
	Timestamp     time.Time      `json:"timestamp"`
	SimHour       float64        `json:"sim_hour"`
	TaskID        string         `json:"task_id"`
	Destination   string         `json:"destination"`
	VehicleID     string         `json:"vehicle_id,omitempty"`
	VehicleKind   string         `json:"vehicle_kind,omitempty"`
	Outcome       Outcome        `json:"outcome"`
	Products      int            `json:"products"`
	WeightKG      float64        `json:"weight_kg"`
	DurationHours float64        `json:"duration_hours,omitempty"`
	Categories    map[string]int `json:"categories,omitempty"`
	Reason        string         `json:"reason,omitempty"`
}

// Query filters records. Zero fields match everything; ToHour is ignored
// when zero.
type Query struct {
	Destination string
	VehicleID   string
	Outcome     Outcome
	FromHour    float64
	ToHour      float64
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if q.Destination != "" && r.Destination != q.Destination {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if r.SimHour < q.FromHour {
		return false
	}
	if q.ToHour > 0 && r.SimHour > q.ToHour {
		return false
	}
	return true
}

// LogStore persists records.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
