// Package auth gates the HTTP API by capability.
//
// Student lookups need CapView, which is always granted. Faculty operations
// need CapManage. In "password" mode the request must carry the faculty
// password in the configured header; it is checked against a bcrypt hash
// resolved from the environment. Mode "none" (or an empty hash) grants
// everything, which is useful for local development.
//
// A denied request gets 401 with a JSON error body.
package auth
