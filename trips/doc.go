// Package trips loads origin-destination trip records and station locations
// from CSV tables.
//
// Columns are addressed by header name, so column order does not matter.
// Rows whose coordinates cannot be parsed are skipped and reported in the
// result rather than handed to the arc generator.
package trips
