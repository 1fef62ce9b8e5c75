package events

// TaskEvent is published on every delivery task transition. Status uses the
// task status names ("pending", "assigned", ...).
type TaskEvent struct {
	TaskID      string
	Destination string
	VehicleID   string
	VehicleKind string
	Status      string
	Reason      string
	Products    int
	WeightKG    float64
	SimHour     float64
	// DurationHours is set once the task is delivered.
	DurationHours float64
}
