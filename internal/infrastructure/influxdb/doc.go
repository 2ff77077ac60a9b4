// Package influxdb records device registry metrics in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched non-blocking writes and health monitoring.
//
// Measurements:
//   - api_requests: one point per HTTP request (tags method, route, status;
//     field duration_ms)
//   - device_events: one point per committed create or delete (tag event;
//     field count)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without metrics
//	}
//	defer client.Close()
//
//	client.RecordRequest("GET", "/devices/{device_id}", 200, elapsed)
//
// Write errors arrive asynchronously; register SetOnError to log them.
package influxdb
