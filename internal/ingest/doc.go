// Package ingest consumes gateway traffic from the MQTT broker and turns
// it into inventory state and stored measurements.
//
// Two topic families are consumed:
//
//	sensornet/telemetry/{gateway}/{serial}  sensor readings (JSON payload)
//	sensornet/heartbeat/{gateway}           gateway liveness pings
//
// Telemetry is resolved against the sensor inventory by serial, persisted
// to the local measurement store, optionally mirrored to InfluxDB, and
// broadcast to WebSocket subscribers. Heartbeats refresh the gateway's
// last-seen timestamp. Readings from serials not present in the inventory
// are dropped with a warning; provisioning is deliberate, not implicit.
package ingest
