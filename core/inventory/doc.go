// Package inventory implements the warehouse stock: a category keyed set of
// product units bounded by a maximum aggregate weight.
//
// All mutations take a single write lock. Units handed to a delivery are
// first reserved by a holder and later committed (removed) or released.
package inventory
