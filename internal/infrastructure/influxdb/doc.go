// Package influxdb provides InfluxDB connectivity for Sensornet Core.
//
// It wraps the official influxdb-client-go v2 library with patterns for
// connection management, measurement mirroring, and health monitoring.
//
// # Purpose
//
// SQLite remains the system of record for measurements; this package
// mirrors every accepted reading into InfluxDB so dashboards can query
// long retention windows without loading the inventory database.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "sensornet",
//	    Bucket: "measurements",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteMeasurement("TMP-0001", "plant-north", "temperature", "celsius", 21.5, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
package influxdb
