package main

import (
	"fmt"
	"io"
	"os"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/fsracer/fsracer/internal/config"
	"github.com/fsracer/fsracer/internal/driver"
	"github.com/fsracer/fsracer/internal/fserrors"
	"github.com/fsracer/fsracer/internal/report"
	"github.com/fsracer/fsracer/internal/trace/parser"
	"github.com/fsracer/fsracer/internal/xlog"
)

func newAnalyzeCmd() *cobra.Command {
	opts := config.Default()
	cmd := &cobra.Command{
		Use:   "analyze <trace-file>",
		Short: "Analyze a trace file and report conflicting task pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Finalize()
			xlog.SetLevel(opts.LogLevel)
			return runAnalyze(args[0], opts)
		},
	}
	opts.RegisterFlags(cmd.Flags())
	return cmd
}

func runAnalyze(tracePath string, opts *config.Options) error {
	f, err := os.Open(tracePath)
	if err != nil {
		return fserrors.NewRuntimeError("open trace file", err)
	}
	defer f.Close()

	p := parser.New(f)
	d := driver.New()

	faults, timings, err := d.Run(p)
	if err != nil {
		return err
	}

	if opts.ShowTimings {
		fmt.Fprintf(os.Stderr, "analyze: %s, detect: %s\n", timings.Analyze.Elapsed(), timings.Detect.Elapsed())
	}

	var outErrs *multierror.Error
	if err := dumpGraph(d, opts); err != nil {
		outErrs = multierror.Append(outErrs, err)
	}
	if opts.AccessesOut != "" {
		if err := dumpAccesses(d, opts); err != nil {
			outErrs = multierror.Append(outErrs, err)
		}
	}

	reportWriter := &report.RaceReportWriter{W: os.Stdout, Faults: faults}
	if err := reportWriter.DumpOutput(); err != nil {
		outErrs = multierror.Append(outErrs, err)
	}

	return outErrs.ErrorOrNil()
}

func dumpGraph(d *driver.Driver, opts *config.Options) error {
	w, closeFn, err := openOut(opts.GraphOut)
	if err != nil {
		return err
	}
	defer closeFn()

	if opts.GraphFormat == config.FormatCSV {
		return report.NewCSVPrinter(w).Print(d.Dependency.G)
	}
	return (&report.DOTPrinter{W: w}).Print(d.Dependency.G)
}

func dumpAccesses(d *driver.Driver, opts *config.Options) error {
	w, closeFn, err := openOut(opts.AccessesOut)
	if err != nil {
		return err
	}
	defer closeFn()

	if opts.AccessFormat == config.FormatCSV {
		return report.NewCSVAccessWriter(w, d.FS.Accesses).DumpOutput()
	}
	return (&report.JSONAccessWriter{W: w, Accesses: d.FS.Accesses}).DumpOutput()
}

func openOut(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fserrors.NewRuntimeError("create output file", err)
	}
	return f, f.Close, nil
}
