// Package replenish restocks the warehouse once per simulated day.
//
// When the night window opens the scheduler records the current load as the
// reference. When the window closes the next morning it refills the amount
// consumed since then and takes the new load as the next baseline. Boundary
// detection compares simulated day indices, so a late or missed sample never
// refills twice nor skips a day.
package replenish
