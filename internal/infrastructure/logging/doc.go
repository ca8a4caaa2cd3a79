// Package logging provides structured logging for Sensornet Core.
//
// It wraps the standard library's log/slog with configuration-driven
// format and level selection, plus default service/version attributes
// on every record.
package logging
