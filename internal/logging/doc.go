// Package logging installs the process wide zerolog logger.
//
// Two profiles exist. ProfileRuntime logs at info with RFC3339 timestamps,
// ProfileTest logs at debug without timestamps. The level passed in Options
// (usually from the config file or --log-level) is applied on top of the
// profile, and the environment wins over both:
//
//	WFRS_LOG_LEVEL    trace|debug|info|warn|error|off
//	WFRS_LOG_NOCOLOR  any strconv.ParseBool value
//
// Output goes to stderr unless Options.File is set. File output is never
// colored. The standard library log package is redirected to the same
// logger.
package logging
