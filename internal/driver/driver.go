// Package driver dispatches each incoming trace record to every
// registered analyzer, then runs the race detector and returns its
// grouped fault report; writing output is left to the caller.
package driver

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/fsracer/fsracer/internal/analyzer"
	"github.com/fsracer/fsracer/internal/clock"
	"github.com/fsracer/fsracer/internal/detector"
	"github.com/fsracer/fsracer/internal/fserrors"
	"github.com/fsracer/fsracer/internal/trace"
	"github.com/fsracer/fsracer/internal/xlog"
)

// Timings reports how long the analyze-all-records loop and the
// detect phase each took.
type Timings struct {
	Analyze, Detect clock.Timer
}

// Driver owns the registered analyzers and the shared detector
// wiring. It holds no trace state of its own.
type Driver struct {
	Dependency *analyzer.DependencyAnalyzer
	FS         *analyzer.FSAnalyzer
	analyzers  []analyzer.Analyzer

	analyzeTimer *clock.Timer
	detectTimer  *clock.Timer
}

// New builds a driver with the two core analyzers registered.
func New() *Driver {
	dep := analyzer.NewDependencyAnalyzer()
	fs := analyzer.NewFSAnalyzer()
	return &Driver{
		Dependency: dep,
		FS:         fs,
		analyzers:  []analyzer.Analyzer{dep, fs},
	}
}

// Run pulls every record from src, feeding each to all analyzers in
// registration order; the first TraceError aborts ingestion. It then
// runs the detector and returns its grouped fault report.
func (d *Driver) Run(src trace.Source) (map[detector.TaskPair][]detector.FaultDesc, Timings, error) {
	var timings Timings

	analyzeTimer := clock.NewTimer()
	for {
		rec, ok, err := src.Next()
		if err != nil {
			analyzeTimer.Stop()
			timings.Analyze = *analyzeTimer
			return nil, timings, err
		}
		if !ok {
			break
		}
		if err := d.dispatch(rec); err != nil {
			xlog.Errorf("driver", "analyzer error: %v", err)
		}
	}
	analyzeTimer.Stop()
	timings.Analyze = *analyzeTimer

	detectTimer := clock.NewTimer()
	det := detector.New(d.Dependency.G, d.Dependency.TaskID)
	faults := det.Detect(d.FS.Accesses)
	detectTimer.Stop()
	timings.Detect = *detectTimer

	return faults, timings, nil
}

func (d *Driver) dispatch(rec trace.Record) error {
	var result *multierror.Error
	for _, a := range d.analyzers {
		if err := a.Handle(rec); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// AnalyzerErrorf is a convenience constructor for the taxonomy's
// ANALYZER_ERROR kind that formats its message with fmt.Sprintf.
func AnalyzerErrorf(component, format string, args ...interface{}) error {
	return fserrors.NewAnalyzerError(component, fmt.Sprintf(format, args...))
}
