// Package conv converts between integer widths with overflow checks.
//
// Snapshot headers carry fixed-width counts that must become Go ints, and
// label counters must fit the int32 label space; both go through here.
// Conversions that are safe by construction use plain casts instead.
package conv
