package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteMeasurement mirrors a sensor reading to InfluxDB.
//
// This is the primary method for recording telemetry. The write is
// non-blocking; data is batched and sent asynchronously. Tags carry the
// identity (serial, gateway, quantity) so dashboards can group by any
// of them; the value and unit go in fields.
//
// Example:
//
//	client.WriteMeasurement("TMP-0001", "plant-north", "temperature", "celsius", 21.5, reading.RecordedAt)
func (c *Client) WriteMeasurement(serial, gatewaySlug, quantity, unit string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"serial":   serial,
		"gateway":  gatewaySlug,
		"quantity": quantity,
	}
	fields := map[string]interface{}{
		"value": value,
	}
	if unit != "" {
		fields["unit"] = unit
	}

	point := write.NewPoint("sensor_readings", tags, fields, at)
	c.writeAPI.WritePoint(point)
}

// WriteGatewayStatus records a gateway liveness transition.
//
// Used for uptime dashboards: 1 for online, 0 for offline.
func (c *Client) WriteGatewayStatus(gatewaySlug string, online bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if online {
		value = 1
	}

	point := write.NewPoint(
		"gateway_status",
		map[string]string{"gateway": gatewaySlug},
		map[string]interface{}{"online": value},
		at,
	)
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, at)
	c.writeAPI.WritePoint(point)
}
