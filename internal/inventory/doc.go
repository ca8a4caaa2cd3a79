// Package inventory provides the gateway, network, and sensor hierarchy
// for Sensornet Core.
//
// It defines the structural model of a deployment: Gateways (edge boxes
// bridging field buses to IP) own Networks (a radio or bus segment on a
// gateway), which own Sensors (individual measuring devices identified
// by serial number).
//
// The package provides a Repository interface with a SQLite
// implementation. Deletes follow the foreign keys: a gateway with
// networks and a network with sensors refuse deletion rather than
// cascading.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package inventory
