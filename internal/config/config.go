// Package config holds FSRacer's small set of run-time options and
// their flag bindings, in the style of rclone's per-backend Options
// structs registered against pflag.
package config

import "github.com/spf13/pflag"

// Format is an output format for a graph or access-table dump.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options are the run-time settings for one `fsracer analyze`
// invocation. The raw*Format fields are bound directly to flags;
// call Finalize after the flag set has been parsed to populate the
// typed Format fields.
type Options struct {
	rawGraphFormat  string
	rawAccessFormat string

	GraphFormat  Format
	GraphOut     string
	AccessFormat Format
	AccessesOut  string
	LogLevel     string
	ShowTimings  bool
}

// Default returns the option set fsracer starts from before flags
// are applied.
func Default() *Options {
	return &Options{
		rawGraphFormat:  string(FormatDOT),
		rawAccessFormat: string(FormatJSON),
		LogLevel:        "info",
	}
}

// RegisterFlags binds Options' fields onto fs, the way rclone's
// backends register their Options against a *pflag.FlagSet.
func (o *Options) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.rawGraphFormat, "format", o.rawGraphFormat, "dependency graph output format (dot|csv)")
	fs.StringVar(&o.GraphOut, "graph-out", o.GraphOut, "file to write the dependency graph to (default: stdout)")
	fs.StringVar(&o.rawAccessFormat, "access-format", o.rawAccessFormat, "fs-access table output format (json|csv)")
	fs.StringVar(&o.AccessesOut, "accesses-out", o.AccessesOut, "file to write the fs-access table to (default: not written)")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level (debug|info|warn|error)")
	fs.BoolVar(&o.ShowTimings, "timings", o.ShowTimings, "print analyze/detect phase timings")
}

// Finalize must be called after the bound flag set has parsed
// arguments; it converts the raw string flags into typed Formats.
func (o *Options) Finalize() {
	o.GraphFormat = Format(o.rawGraphFormat)
	o.AccessFormat = Format(o.rawAccessFormat)
}
