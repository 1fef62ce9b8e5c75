package events

// RefillPhase names the window boundary that produced a RefillEvent.
type RefillPhase string

const (
	WindowOpened RefillPhase = "window_opened"
	WindowClosed RefillPhase = "window_closed"
)

// RefillEvent is published by the replenishment scheduler at each window
// boundary. AddedKG is zero on opening and when nothing was consumed.
type RefillEvent struct {
	Warehouse   string
	Phase       RefillPhase
	Day         int
	SimHour     float64
	ReferenceKG float64
	LoadKG      float64
	ConsumedKG  float64
	AddedKG     float64
	Units       int
}
