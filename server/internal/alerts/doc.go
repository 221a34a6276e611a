// Package alerts evaluates per-student attendance rules and delivers webhook
// notifications when a rule fires or resolves. Targets are Teams, Slack, or
// a generic HTTP endpoint.
package alerts
