package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsracer/fsracer/internal/fsmodel"
	"github.com/fsracer/fsracer/internal/trace"
)

func beginTask(t *testing.T, a *FSAnalyzer, name string) {
	t.Helper()
	require.NoError(t, a.Handle(trace.ExecTaskBegRecord{Name: name}))
}

func op(o trace.Operation) trace.Record { return trace.OpRecord{Op: o} }

func TestFSHpathRecordsAccessUnderCurrentTask(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/tmp/x", Access: trace.AccessProduced,
	})))

	got, ok := a.Accesses.Get("/tmp/x", "A")
	require.True(t, ok)
	assert.Equal(t, trace.AccessProduced, got.Type)
}

func TestFSOpIgnoredOutsideAnyTaskScope(t *testing.T) {
	a := NewFSAnalyzer()
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/tmp/x", Access: trace.AccessProduced,
	})))

	_, ok := a.Accesses.Get("/tmp/x", "A")
	assert.False(t, ok)
}

func TestFSFailedOpHasNoEffect(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/tmp/x",
		Access: trace.AccessProduced, Failed: true,
	})))

	_, ok := a.Accesses.Get("/tmp/x", "A")
	assert.False(t, ok)
}

func TestFSNewFdDelFdDupFd(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpNewFd, Dirfd: trace.AtFDCWD, Path: "/tmp/x", Fd: 3,
	})))

	key, ok := a.Fds.Lookup(1, 3)
	require.True(t, ok)
	assert.True(t, a.Inodes.IsOpen(key))

	require.NoError(t, a.Handle(op(trace.Operation{Pid: 1, Kind: trace.OpDupFd, Fd: 3, NewFd: 4})))
	dupKey, ok := a.Fds.Lookup(1, 4)
	require.True(t, ok)
	assert.Equal(t, key, dupKey)

	require.NoError(t, a.Handle(op(trace.Operation{Pid: 1, Kind: trace.OpDelFd, Fd: 3})))
	_, ok = a.Fds.Lookup(1, 3)
	assert.False(t, ok)
}

func TestFSDupFdSkipsStandardDescriptors(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{Pid: 1, Kind: trace.OpDupFd, Fd: 0, NewFd: 9})))
	_, ok := a.Fds.Lookup(1, 9)
	assert.False(t, ok)
}

func TestFSHpathSymDoesNotDereferenceButHpathDoes(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpSymlink, Dirfd: trace.AtFDCWD, Path: "/l", Path2: "/real",
	})))
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpathSym, Dirfd: trace.AtFDCWD, Path: "/l", Access: trace.AccessConsumed,
	})))
	_, ok := a.Accesses.Get("/l", "A")
	assert.True(t, ok)

	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/l", Access: trace.AccessConsumed,
	})))
	_, ok = a.Accesses.Get("/real", "A")
	assert.True(t, ok)
}

func TestFSLinkSharesInodeAndRenameMovesIt(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpNewFd, Dirfd: trace.AtFDCWD, Path: "/a", Fd: 3,
	})))
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpLink, Dirfd: trace.AtFDCWD, Path: "/a", Dirfd2: trace.AtFDCWD, Path2: "/b",
	})))

	keyA := fsmodel.InodeKey{Parent: fsmodel.RootInode, Base: "a"}
	keyB := fsmodel.InodeKey{Parent: fsmodel.RootInode, Base: "b"}
	inoA, okA := a.Inodes.Lookup(keyA)
	inoB, okB := a.Inodes.Lookup(keyB)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, inoA, inoB)

	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpRename, Dirfd: trace.AtFDCWD, Path: "/b", Dirfd2: trace.AtFDCWD, Path2: "/c",
	})))
	_, stillAtB := a.Inodes.Lookup(keyB)
	assert.False(t, stillAtB)

	keyC := fsmodel.InodeKey{Parent: fsmodel.RootInode, Base: "c"}
	inoC, atC := a.Inodes.Lookup(keyC)
	require.True(t, atC)
	assert.Equal(t, inoA, inoC)
}

func TestFSNewProcInheritsFdAndCwdPerCloneMode(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpSetCwd, Path: "/home",
	})))
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpNewFd, Dirfd: trace.AtFDCWD, Path: "/home/f", Fd: 5,
	})))
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpNewProc, Clone: trace.CloneFDFS, NewPid: 2,
	})))

	_, ok := a.Fds.Lookup(2, 5)
	assert.True(t, ok)
	_, ok = a.Cwds.Get(2)
	assert.True(t, ok)
}

func TestFSNewProcFDOnlyDoesNotInheritCwd(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{Pid: 1, Kind: trace.OpSetCwd, Path: "/home"})))
	require.NoError(t, a.Handle(op(trace.Operation{Pid: 1, Kind: trace.OpNewProc, Clone: trace.CloneFD, NewPid: 2})))

	_, ok := a.Cwds.Get(2)
	assert.False(t, ok)
}

func TestFSProducedThenExpungedBySameTaskCancels(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/t/f", Access: trace.AccessProduced,
	})))
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/t/f", Access: trace.AccessExpunged,
	})))
	_, ok := a.Accesses.Get("/t/f", "A")
	assert.False(t, ok, "produced then expunged by the same task cancels out")
}

func TestFSMkdirClassifiesDirectory(t *testing.T) {
	a := NewFSAnalyzer()
	beginTask(t, a, "A")
	require.NoError(t, a.Handle(op(trace.Operation{
		Pid: 1, Kind: trace.OpHpath, Dirfd: trace.AtFDCWD, Path: "/d",
		Access: trace.AccessProduced, ActualName: "mkdir",
	})))
	assert.True(t, a.Dirs.Contains("/d"))
}
