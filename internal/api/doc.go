// Package api implements the HTTP/JSON interface of the device registry.
//
// This package provides:
//   - Device endpoints: create, list, fetch and delete by device_id
//   - Liveness (GET /) and readiness (GET /healthz) probes
//   - A JSON system metrics snapshot (GET /metrics)
//   - Middleware stack (request ID, logging, recovery, CORS, body limit,
//     request metrics)
//
// # Error Responses
//
// Every failure carries a JSON body:
//
//	{"detail": "Device with device_id 'dev-1' not found", "code": "not_found"}
//
// Validation failures (422) add a per-field list:
//
//	{"detail": "Validation failed", "code": "validation_error",
//	 "errors": [{"field": "name", "message": "field required"}]}
//
// Domain errors from the device package map to status codes at this
// boundary only: ErrInvalidDevice to 422, ErrDeviceExists to 409,
// ErrDeviceNotFound to 404, anything else to 500.
package api
