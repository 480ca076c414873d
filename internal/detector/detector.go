// Package detector implements the race detector: for every path
// with two or more task-level accesses, it checks the conflict
// table and the dependency graph's reachability to report unordered
// conflicting task pairs lacking a happens-before edge.
package detector

import (
	"github.com/fsracer/fsracer/internal/analyzer"
	"github.com/fsracer/fsracer/internal/fsmodel"
	"github.com/fsracer/fsracer/internal/graph"
	"github.com/fsracer/fsracer/internal/trace"
)

// FaultDesc describes one conflicting pair of accesses to a shared
// path.
type FaultDesc struct {
	Path    string
	Access1 fsmodel.FSAccess
	Access2 fsmodel.FSAccess
}

// TaskPair is an unordered pair of task names, normalized so A <= B
// lexically, used as a map key for grouping faults.
type TaskPair struct {
	A, B string
}

func newTaskPair(a, b string) TaskPair {
	if a <= b {
		return TaskPair{A: a, B: b}
	}
	return TaskPair{A: b, B: a}
}

// RaceDetector joins a dependency graph and an access table to find
// races. It never fails; it only reports.
type RaceDetector struct {
	graph    *graph.Graph[analyzer.NodePayload, trace.EdgeLabel]
	taskIDs  func(name string) (graph.ID, bool)
	dfsCache map[string]map[string]struct{}
}

// New builds a detector over the given dependency graph. taskIDs
// resolves a task name to its graph node id.
func New(g *graph.Graph[analyzer.NodePayload, trace.EdgeLabel], taskIDs func(string) (graph.ID, bool)) *RaceDetector {
	return &RaceDetector{
		graph:    g,
		taskIDs:  taskIDs,
		dfsCache: make(map[string]map[string]struct{}),
	}
}

// conflict is the symmetric conflict table of §4.4.
func conflict(a, b trace.AccessType) bool {
	if a == trace.AccessConsumed && b == trace.AccessConsumed {
		return false
	}
	if a == trace.AccessTouched && b == trace.AccessTouched {
		return false
	}
	if (a == trace.AccessConsumed && b == trace.AccessTouched) ||
		(a == trace.AccessTouched && b == trace.AccessConsumed) {
		return false
	}
	return true
}

// HappensBefore reports whether tgt is reachable from src in the
// dependency graph. A src or tgt with no registered task node is not
// happens-before anything (the race it might otherwise suppress must
// still be reported); a real graph node that isn't a task is treated
// as trivially happens-before (file nodes are never racy endpoints).
// Results are memoized per source task.
func (d *RaceDetector) HappensBefore(src, tgt string) bool {
	srcID, ok := d.taskIDs(src)
	if !ok {
		return false
	}
	tgtID, ok := d.taskIDs(tgt)
	if !ok {
		return false
	}
	if payload, ok := d.graph.Node(srcID); !ok || !payload.IsTask {
		return true
	}
	if payload, ok := d.graph.Node(tgtID); !ok || !payload.IsTask {
		return true
	}
	reachable, cached := d.dfsCache[src]
	if !cached {
		ids := d.graph.DFS(srcID)
		reachable = make(map[string]struct{}, len(ids))
		for id := range ids {
			if payload, ok := d.graph.Node(id); ok && payload.IsTask {
				reachable[taskNameOf(payload)] = struct{}{}
			}
		}
		d.dfsCache[src] = reachable
	}
	_, ok = reachable[tgt]
	return ok
}

func taskNameOf(p analyzer.NodePayload) string {
	return p.Task.Name
}

// Detect runs the algorithm over every path in accesses, returning
// faults grouped by unordered task pair.
func (d *RaceDetector) Detect(accesses *fsmodel.AccessTable) map[TaskPair][]FaultDesc {
	result := make(map[TaskPair][]FaultDesc)
	for _, p := range accesses.Paths() {
		accs := accesses.AccessesForPath(p)
		for i := 0; i < len(accs); i++ {
			for j := i + 1; j < len(accs); j++ {
				a, b := accs[i], accs[j]
				if a.Task == b.Task {
					continue
				}
				if !conflict(a.Type, b.Type) {
					continue
				}
				if d.HappensBefore(a.Task, b.Task) || d.HappensBefore(b.Task, a.Task) {
					continue
				}
				pair := newTaskPair(a.Task, b.Task)
				result[pair] = append(result[pair], FaultDesc{Path: p, Access1: a, Access2: b})
			}
		}
	}
	return result
}
