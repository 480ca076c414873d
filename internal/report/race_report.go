package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fsracer/fsracer/internal/detector"
	"github.com/fsracer/fsracer/internal/xlog"
)

// RaceReportWriter writes the stdout race report: a header with the
// total race count, then one section per unordered task pair with
// per-path fault details.
type RaceReportWriter struct {
	W      io.Writer
	Faults map[detector.TaskPair][]detector.FaultDesc
}

func (w *RaceReportWriter) DumpOutput() error {
	total := 0
	for _, fs := range w.Faults {
		total += len(fs)
	}
	xlog.Logf("report", "writing race report: %d pair(s), %d fault(s)", len(w.Faults), total)

	if _, err := fmt.Fprintf(w.W, "races found: %d\n", total); err != nil {
		return err
	}

	pairs := make([]detector.TaskPair, 0, len(w.Faults))
	for p := range w.Faults {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	for _, pair := range pairs {
		if _, err := fmt.Fprintf(w.W, "\n%s <-> %s\n", pair.A, pair.B); err != nil {
			return err
		}
		for _, f := range w.Faults[pair] {
			line := fmt.Sprintf("* Event: %s%s and Event: %s%s on %s\n",
				f.Access1.Operation, debugTags(f.Access1.Debug),
				f.Access2.Operation, debugTags(f.Access2.Debug),
				f.Path)
			if _, err := io.WriteString(w.W, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *RaceReportWriter) Close() error { return nil }

func debugTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " !" + strings.Join(tags, " !")
}
