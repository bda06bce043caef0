// Package logging provides structured logging for fonbook.
//
// This package wraps a zap logger with convenience functions. Logging is
// silent unless FONBOOK_LOG_LEVEL (or the --log-level flag) selects a level,
// so the curated command output stays clean.
//
// # Log Levels
//
//   - Debug: HTTP exchanges, detection requests, response body dumps
//   - Info: detected login style, successful logins, retrieved phonebooks
//   - Warn: failed logins, firmware quirks
//   - Error: command failures
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("Logged in", zap.String("host", "fritz.box"))
//
// Passwords and challenge responses are never logged. Request queries are
// left out of exchange logs because they carry session ids; response dumps
// at debug level may still contain them.
//
// Logs go to stderr so they never mix with exported phonebook data.
package logging
