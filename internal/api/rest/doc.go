// Package rest serves the browser face of the clock: an embedded page, a JSON
// API mirroring the engine operations, a websocket event feed, Prometheus
// metrics and a health probe.
package rest
