// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - TaskEvent: delivery task state change
//   - RefillEvent: night window boundary and refill outcome
//   - VehicleEvent: vehicle arrival at a destination
package events
