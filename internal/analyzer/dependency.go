package analyzer

import (
	"fmt"

	"github.com/fsracer/fsracer/internal/fserrors"
	"github.com/fsracer/fsracer/internal/graph"
	"github.com/fsracer/fsracer/internal/trace"
)

// NodePayload is the dependency graph's node type: either a task (
// IsTask true, Task populated) or a file node (Path populated).
type NodePayload struct {
	IsTask bool
	Task   trace.Task
	Path   string
}

// Executed is the node attribute set on a task's execTaskBeg.
const Executed = "EXECUTED"

// DependencyAnalyzer builds the happens-before dependency graph from
// newTask, dependsOn, consumes, produces, execTask and sysop
// records.
type DependencyAnalyzer struct {
	G     *graph.Graph[NodePayload, trace.EdgeLabel]
	ids   map[string]graph.ID
	next  graph.ID
	scope scopeStack

	// lastMainSinks links successive top-level MAIN blocks: see
	// SPEC_FULL.md's "sinks()-based MAIN-block chaining" supplement.
	lastMainSinks []graph.ID
	haveMain      bool
}

// NewDependencyAnalyzer returns an analyzer with an empty graph.
func NewDependencyAnalyzer() *DependencyAnalyzer {
	return &DependencyAnalyzer{
		G:   graph.New[NodePayload, trace.EdgeLabel](),
		ids: make(map[string]graph.ID),
	}
}

func taskKey(name string) string { return "task:" + name }
func fileKey(path string) string { return "file:" + path }

func (a *DependencyAnalyzer) idFor(key string) graph.ID {
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := a.next
	a.next++
	a.ids[key] = id
	return id
}

// TaskID returns the graph id assigned to a declared task.
func (a *DependencyAnalyzer) TaskID(name string) (graph.ID, bool) {
	id, ok := a.ids[taskKey(name)]
	return id, ok
}

// FileID returns the graph id assigned to a file node, if it has
// been consumed/produced at least once.
func (a *DependencyAnalyzer) FileID(path string) (graph.ID, bool) {
	id, ok := a.ids[fileKey(path)]
	return id, ok
}

func (a *DependencyAnalyzer) Handle(rec trace.Record) error {
	switch r := rec.(type) {
	case trace.NewTaskRecord:
		a.newTask(r)
	case trace.DependsOnRecord:
		return a.dependsOn(r)
	case trace.ConsumesRecord:
		return a.edgeTo(r.Task, r.Path, trace.Consumes)
	case trace.ProducesRecord:
		return a.edgeTo(r.Task, r.Path, trace.Produces)
	case trace.ExecTaskBegRecord:
		return a.execTaskBeg(r)
	case trace.SysOpRecord:
		a.scope.SysOpBeg(r.Mode, r.Task)
	case trace.EndRecord:
		wasTopLevelExec := !a.scope.inSysop
		var endingTaskID graph.ID
		var hadEndingTask bool
		if wasTopLevelExec && a.scope.haveExec {
			endingTaskID, hadEndingTask = a.TaskID(a.scope.execTask)
		}
		a.scope.End()
		if wasTopLevelExec && hadEndingTask {
			if payload, ok := a.G.Node(endingTaskID); ok && payload.Task.Type == trace.TaskMAIN {
				a.FinishMainBlock()
			}
		}
	}
	return nil
}

func (a *DependencyAnalyzer) newTask(r trace.NewTaskRecord) {
	id := a.idFor(taskKey(r.Name))
	a.G.AddNode(id, NodePayload{IsTask: true, Task: r.Task})
}

func (a *DependencyAnalyzer) dependsOn(r trace.DependsOnRecord) error {
	srcID, ok1 := a.TaskID(r.Source)
	tgtID, ok2 := a.TaskID(r.Target)
	if !ok1 || !ok2 {
		return fserrors.NewAnalyzerError("dependency",
			fmt.Sprintf("dependsOn references unknown task(s): %s -> %s", r.Source, r.Target))
	}
	a.G.AddEdge(srcID, tgtID, trace.HappensBefore)
	return nil
}

func (a *DependencyAnalyzer) edgeTo(taskName, path string, label trace.EdgeLabel) error {
	taskID, ok := a.TaskID(taskName)
	if !ok {
		return fserrors.NewAnalyzerError("dependency", "reference to unknown task: "+taskName)
	}
	fileID := a.idFor(fileKey(path))
	a.G.AddNode(fileID, NodePayload{Path: path})
	a.G.AddEdge(taskID, fileID, label)
	return nil
}

func (a *DependencyAnalyzer) execTaskBeg(r trace.ExecTaskBegRecord) error {
	id, ok := a.TaskID(r.Name)
	if !ok {
		return fserrors.NewAnalyzerError("dependency", "execTask references unknown task: "+r.Name)
	}
	a.G.AddNodeAttr(id, Executed)

	if payload, ok := a.G.Node(id); ok && payload.Task.Type == trace.TaskMAIN {
		if a.haveMain {
			for _, sink := range a.lastMainSinks {
				a.G.AddEdge(sink, id, trace.HappensBefore)
			}
		}
		a.haveMain = true
	}

	a.scope.ExecBeg(r.Name)
	return nil
}

// FinishMainBlock records the current graph's sinks as the
// predecessor set for the next top-level MAIN block, if any. Handle
// calls this when the "}" closing a MAIN task's execTask block
// arrives.
func (a *DependencyAnalyzer) FinishMainBlock() {
	if !a.haveMain {
		return
	}
	a.lastMainSinks = a.G.Sinks()
}
