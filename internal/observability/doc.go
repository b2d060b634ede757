// Package observability provides the session logger, a JSON Lines log of
// task store activity, and metrics derived on demand from that log.
package observability
