// Package database manages the SQLite inventory store for Sensornet Core.
//
// It wraps database/sql with connection configuration tuned for SQLite
// (WAL mode, busy timeout, single-writer pool) and an embedded SQL
// migration runner. Repositories in the domain packages receive the
// *sql.DB and own their queries; this package owns the connection and
// schema lifecycle only.
package database
