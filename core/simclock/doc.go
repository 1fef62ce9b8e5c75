// Package simclock provides the simulated time source. An Engine advances a
// whole simulated hour every scale interval of real time and broadcasts a
// Tick to subscribers. Readers call Now without locking.
//
// Simulated day 1 starts at hour 0 and is a Monday.
package simclock
