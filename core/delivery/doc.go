// Package delivery holds the delivery task state machine and the
// orchestrator that binds tasks to vehicles.
//
// Products are reserved in the inventory when a task is created and only
// committed when the task executes. A vehicle is leased to a task for the
// whole load, transport and unload pipeline.
package delivery
