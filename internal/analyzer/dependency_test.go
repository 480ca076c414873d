package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsracer/fsracer/internal/trace"
)

func newTaskRecord(name string, typ trace.TaskType) trace.NewTaskRecord {
	return trace.NewTaskRecord{Name: name, Task: trace.Task{Name: name, Type: typ, Value: 1}}
}

func TestDependencyNewTaskAddsNode(t *testing.T) {
	a := NewDependencyAnalyzer()
	require.NoError(t, a.Handle(newTaskRecord("A", trace.TaskW)))

	id, ok := a.TaskID("A")
	require.True(t, ok)
	assert.True(t, a.G.HasNode(id))
}

func TestDependsOnUnknownTaskErrors(t *testing.T) {
	a := NewDependencyAnalyzer()
	err := a.Handle(trace.DependsOnRecord{Source: "A", Target: "B"})
	assert.Error(t, err)
}

func TestDependsOnAddsEdge(t *testing.T) {
	a := NewDependencyAnalyzer()
	require.NoError(t, a.Handle(newTaskRecord("A", trace.TaskW)))
	require.NoError(t, a.Handle(newTaskRecord("B", trace.TaskW)))
	require.NoError(t, a.Handle(trace.DependsOnRecord{Source: "A", Target: "B"}))

	idA, _ := a.TaskID("A")
	idB, _ := a.TaskID("B")
	assert.True(t, a.G.HasPath(idA, idB))
	assert.False(t, a.G.HasPath(idB, idA))
}

func TestConsumesOnUnknownTaskErrors(t *testing.T) {
	a := NewDependencyAnalyzer()
	err := a.Handle(trace.ConsumesRecord{Task: "A", Path: "/x"})
	assert.Error(t, err)
}

func TestConsumesCreatesFileNodeAndEdge(t *testing.T) {
	a := NewDependencyAnalyzer()
	require.NoError(t, a.Handle(newTaskRecord("A", trace.TaskW)))
	require.NoError(t, a.Handle(trace.ConsumesRecord{Task: "A", Path: "/x"}))

	taskID, _ := a.TaskID("A")
	fileID, ok := a.FileID("/x")
	require.True(t, ok)
	assert.True(t, a.G.HasPath(taskID, fileID))
}

func TestExecTaskBegMarksExecutedAndUnknownTaskErrors(t *testing.T) {
	a := NewDependencyAnalyzer()
	err := a.Handle(trace.ExecTaskBegRecord{Name: "ghost"})
	assert.Error(t, err)

	require.NoError(t, a.Handle(newTaskRecord("A", trace.TaskW)))
	require.NoError(t, a.Handle(trace.ExecTaskBegRecord{Name: "A"}))
	idA, _ := a.TaskID("A")
	assert.True(t, a.G.HasNodeAttr(idA, Executed))
}

func TestMainBlockSinksChainToNextMainBlock(t *testing.T) {
	a := NewDependencyAnalyzer()
	require.NoError(t, a.Handle(newTaskRecord("M1", trace.TaskMAIN)))
	require.NoError(t, a.Handle(newTaskRecord("M2", trace.TaskMAIN)))

	require.NoError(t, a.Handle(trace.ExecTaskBegRecord{Name: "M1"}))
	require.NoError(t, a.Handle(trace.ProducesRecord{Task: "M1", Path: "/out"}))
	require.NoError(t, a.Handle(trace.EndRecord{}))

	require.NoError(t, a.Handle(trace.ExecTaskBegRecord{Name: "M2"}))

	fileID, ok := a.FileID("/out")
	require.True(t, ok)
	idM2, _ := a.TaskID("M2")
	assert.True(t, a.G.HasPath(fileID, idM2))
}

func TestSysopScopeDoesNotTriggerMainChaining(t *testing.T) {
	a := NewDependencyAnalyzer()
	require.NoError(t, a.Handle(newTaskRecord("M1", trace.TaskMAIN)))
	require.NoError(t, a.Handle(trace.ExecTaskBegRecord{Name: "M1"}))
	require.NoError(t, a.Handle(trace.SysOpRecord{ID: "1", Mode: trace.Sync}))
	require.NoError(t, a.Handle(trace.EndRecord{})) // closes the sysop scope, not the exec block

	assert.True(t, a.haveMain)
	assert.Nil(t, a.lastMainSinks)
}
