package events

// VehicleEvent reports a completed transport leg.
type VehicleEvent struct {
	VehicleID   string
	Kind        string
	From        string
	To          string
	LoadKG      float64
	TravelHours float64
}
