// Package ws implements the dashboard WebSocket hub for attendance-server.
//
// Hub keeps a set of connected clients and pushes the roster-wide summary to
// all of them every interval, right after any roster or attendance change
// (see Hub.Notify), and once to each client as soon as it connects.
//
// Message format sent to clients:
//
//	{
//	  "event": "summary",
//	  "data":  { /* same schema as GET /api/v1/summary */ }
//	}
//
// The upgrader accepts all origins. The server mounts the hub at /ws/stream
// behind the faculty capability.
package ws
