// Package output provides output formatting for peermeet-cli.
//
// Commands render their results through a Formatter selected by the
// --output flag: an aligned text table (default), indented JSON, or
// YAML. The Spinner animates long waits on a terminal.
package output
