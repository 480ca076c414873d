// Package report implements the output side of FSRacer: DOT/CSV
// dependency-graph printers, JSON/CSV access-table dumps, and the
// stdout race report.
package report

// Sink is an exclusive, single-use output destination: one writer
// per sink, torn down after DumpOutput.
type Sink interface {
	DumpOutput() error
	Close() error
}
