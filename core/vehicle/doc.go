// Package vehicle models fleet vehicles: a shared capacity and cargo state
// machine parameterised by a ground or air Profile.
//
// A vehicle can be leased by one owner at a time. The lease does not guard
// individual operations; it marks the vehicle as taken for the length of a
// delivery pipeline.
package vehicle
