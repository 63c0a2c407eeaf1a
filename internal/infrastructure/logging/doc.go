// Package logging provides structured logging for the bridge.
//
// It wraps the standard library's log/slog with service defaults: every
// record carries service and version fields, the level and format come from
// configuration, and components tag their records via With:
//
//	log := logging.New(cfg.Logging, version)
//	bridgeLog := log.With("component", "bridge")
package logging
