// Package api provides the HTTP REST API and WebSocket server for
// Sensornet Core.
//
// It exposes authentication, inventory management (gateways, networks,
// sensors), measurement queries, the audit trail, and a live measurement
// stream over WebSocket.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Every error leaving a handler passes through a single classification
// point that maps domain sentinel errors onto a uniform response body:
//
//	{"status": 404, "message": "gateway not found", "name": "NotFound"}
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
