package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the registry.
const (
	measurementRequests     = "api_requests"
	measurementDeviceEvents = "device_events"
)

// RecordRequest writes one HTTP request observation.
//
// route should be the router pattern (e.g. "/devices/{device_id}"), not the
// raw path, to keep tag cardinality bounded. The write is non-blocking.
func (c *Client) RecordRequest(method, route string, status int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(requestPoint(method, route, status, duration, time.Now()))
}

// RecordDeviceEvent writes a count of one device lifecycle event.
func (c *Client) RecordDeviceEvent(event string) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(deviceEventPoint(event, time.Now()))
}

func requestPoint(method, route string, status int, duration time.Duration, ts time.Time) *write.Point {
	if route == "" {
		route = "unmatched"
	}
	return write.NewPoint(
		measurementRequests,
		map[string]string{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000,
		},
		ts,
	)
}

func deviceEventPoint(event string, ts time.Time) *write.Point {
	return write.NewPoint(
		measurementDeviceEvents,
		map[string]string{"event": event},
		map[string]interface{}{"count": int64(1)},
		ts,
	)
}
