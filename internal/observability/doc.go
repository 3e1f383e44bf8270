// Package observability provides event logging, metrics calculation, and
// alerting for worktally. Every workspace mutation is recorded as a JSON Lines
// event; metrics and timer alerts are derived on demand from that log.
package observability
