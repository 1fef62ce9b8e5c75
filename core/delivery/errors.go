package delivery

import "errors"

var (
	ErrInvalidTransition     = errors.New("delivery: invalid state transition")
	ErrTerminal              = errors.New("delivery: task already finished")
	ErrNoProducts            = errors.New("delivery: no products")
	ErrBlankDestination      = errors.New("delivery: blank destination")
	ErrInsufficientInventory = errors.New("delivery: insufficient inventory")
	ErrNoVehicle             = errors.New("delivery: no vehicle available")
	// ErrVehicleIneligible is returned when a vehicle cannot take the task,
	// either at assignment or when re-validated before execution.
	ErrVehicleIneligible = errors.New("delivery: vehicle not eligible")
	// ErrPartialCommit means fewer units left the inventory than the task
	// holds; the task is cancelled.
	ErrPartialCommit = errors.New("delivery: partial inventory commit")
	ErrNothingLoaded = errors.New("delivery: vehicle accepted no products")
)
