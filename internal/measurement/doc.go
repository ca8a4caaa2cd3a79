// Package measurement stores sensor readings.
//
// Readings land in SQLite as the system of record and are mirrored to
// the time-series database for dashboards. This package owns the local
// store: recording, latest-value lookup, bounded history queries, and
// retention pruning.
package measurement
