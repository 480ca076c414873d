package analyzer

import (
	"path"
	"strings"

	"github.com/fsracer/fsracer/internal/fsmodel"
	"github.com/fsracer/fsracer/internal/trace"
)

// FSAnalyzer translates pid-scoped system-call effects into a
// per-task, per-path access table, resolving paths through the
// inode/fd/cwd/symlink tables.
type FSAnalyzer struct {
	Inodes   *fsmodel.InodeTable
	Fds      *fsmodel.FdTable
	Cwds     *fsmodel.CwdTable
	Symlinks *fsmodel.SymlinkTable
	Accesses *fsmodel.AccessTable
	Dirs     *fsmodel.DirectorySet

	scope scopeStack
}

// NewFSAnalyzer returns an analyzer with empty, freshly-seeded
// tables.
func NewFSAnalyzer() *FSAnalyzer {
	return &FSAnalyzer{
		Inodes:   fsmodel.NewInodeTable(),
		Fds:      fsmodel.NewFdTable(),
		Cwds:     fsmodel.NewCwdTable(),
		Symlinks: fsmodel.NewSymlinkTable(),
		Accesses: fsmodel.NewAccessTable(),
		Dirs:     fsmodel.NewDirectorySet(),
	}
}

func (a *FSAnalyzer) Handle(rec trace.Record) error {
	switch r := rec.(type) {
	case trace.ExecTaskBegRecord:
		a.scope.ExecBeg(r.Name)
	case trace.SysOpRecord:
		a.scope.SysOpBeg(r.Mode, r.Task)
	case trace.EndRecord:
		a.scope.End()
	case trace.OpRecord:
		a.handleOp(r.Op)
	}
	return nil
}

func (a *FSAnalyzer) currentTask() string {
	task, ok := a.scope.Current()
	if !ok {
		return ""
	}
	return task
}

func canon(p string) string {
	if p == "" {
		return p
	}
	return path.Clean(p)
}

// resolveDirfd resolves a dirfd to the inode it names.
func (a *FSAnalyzer) resolveDirfd(pid, dirfd int) (fsmodel.Inode, bool) {
	if dirfd == trace.AtFDCWD {
		return a.Cwds.Get(pid)
	}
	key, ok := a.Fds.Lookup(pid, dirfd)
	if !ok {
		return 0, false
	}
	return a.Inodes.Lookup(key)
}

// resolvePath implements the path resolution algorithm of
// SPEC_FULL.md §4.3: absolute paths pass through, relative paths are
// joined against the dirfd's (unique) directory path.
func (a *FSAnalyzer) resolvePath(pid, dirfd int, p string) (string, bool) {
	if path.IsAbs(p) {
		return canon(p), true
	}
	parent, ok := a.resolveDirfd(pid, dirfd)
	if !ok {
		return "", false
	}
	parentPath, ok := a.Inodes.UniquePath(parent)
	if !ok {
		return "", false
	}
	return canon(path.Join(parentPath, p)), true
}

// resolveParent finds the inode of abspath's containing directory.
// abspath is already fully resolved, so its parent may differ from
// dirfd's own inode (a multi-component relative path, or an absolute
// path given alongside an unrelated or unset dirfd); dirfd is only
// consulted as a fallback for the direct-child case.
func (a *FSAnalyzer) resolveParent(pid, dirfd int, abspath string) fsmodel.Inode {
	dir := path.Dir(abspath)
	if dir == "/" {
		return fsmodel.RootInode
	}
	if ino, ok := a.inodeForPath(dir); ok {
		return ino
	}
	if ino, ok := a.resolveDirfd(pid, dirfd); ok {
		return ino
	}
	return fsmodel.RootInode
}

func (a *FSAnalyzer) handleOp(op trace.Operation) {
	if op.Failed {
		return
	}
	switch op.Kind {
	case trace.OpNewFd:
		a.newFd(op)
	case trace.OpDelFd:
		a.delFd(op)
	case trace.OpDupFd:
		a.dupFd(op)
	case trace.OpHpath:
		a.hpath(op, true)
	case trace.OpHpathSym:
		a.hpath(op, false)
	case trace.OpLink:
		a.link(op)
	case trace.OpRename:
		a.rename(op)
	case trace.OpSymlink:
		a.symlink(op)
	case trace.OpNewProc:
		a.newProc(op)
	case trace.OpSetCwd:
		a.setCwd(op)
	case trace.OpSetCwdFd:
		a.setCwdFd(op)
	}
}

func (a *FSAnalyzer) newFd(op trace.Operation) {
	if op.Fd < 0 {
		return
	}
	abspath, ok := a.resolvePath(op.Pid, op.Dirfd, op.Path)
	if !ok {
		return
	}
	parent := a.resolveParent(op.Pid, op.Dirfd, abspath)
	key := fsmodel.InodeKey{Parent: parent, Base: path.Base(abspath)}
	a.Inodes.AddEntry(key, abspath)
	a.Fds.Insert(op.Pid, op.Fd, key)
	a.Inodes.OpenInode(key)
}

func (a *FSAnalyzer) delFd(op trace.Operation) {
	key, ok := a.Fds.Remove(op.Pid, op.Fd)
	if !ok {
		return
	}
	a.Inodes.CloseInode(key)
}

func (a *FSAnalyzer) dupFd(op trace.Operation) {
	if op.Fd == 0 || op.Fd == 1 || op.Fd == 2 || op.Fd == op.NewFd {
		return
	}
	a.Fds.Dup(op.Pid, op.Fd, op.NewFd)
}

func (a *FSAnalyzer) hpath(op trace.Operation, dereference bool) {
	abspath, ok := a.resolvePath(op.Pid, op.Dirfd, op.Path)
	if !ok {
		return
	}
	if dereference {
		parent := a.resolveParent(op.Pid, op.Dirfd, abspath)
		key := fsmodel.InodeKey{Parent: parent, Base: path.Base(abspath)}
		if ino, ok := a.Inodes.Lookup(key); ok {
			if target, ok := a.Symlinks.Get(ino); ok {
				abspath = canon(target)
			}
		}
	}
	a.applyEffect(abspath, op.Access, op.OpName(), op.Debug)
}

func (a *FSAnalyzer) link(op trace.Operation) {
	oldPath, ok := a.resolvePath(op.Pid, op.Dirfd, op.Path)
	if !ok {
		return
	}
	newPath, ok := a.resolvePath(op.Pid, op.Dirfd2, op.Path2)
	if !ok {
		return
	}
	oldParent := a.resolveParent(op.Pid, op.Dirfd, oldPath)
	oldKey := fsmodel.InodeKey{Parent: oldParent, Base: path.Base(oldPath)}
	ino, ok := a.Inodes.Lookup(oldKey)
	if !ok {
		return
	}
	newParent := a.resolveParent(op.Pid, op.Dirfd2, newPath)
	newKey := fsmodel.InodeKey{Parent: newParent, Base: path.Base(newPath)}
	a.Inodes.AddHardLink(newKey, ino, newPath)
}

func (a *FSAnalyzer) rename(op trace.Operation) {
	oldPath, ok := a.resolvePath(op.Pid, op.Dirfd, op.Path)
	if !ok {
		return
	}
	newPath, ok := a.resolvePath(op.Pid, op.Dirfd2, op.Path2)
	if !ok {
		return
	}
	oldParent := a.resolveParent(op.Pid, op.Dirfd, oldPath)
	oldKey := fsmodel.InodeKey{Parent: oldParent, Base: path.Base(oldPath)}
	ino, ok := a.Inodes.Lookup(oldKey)
	if !ok {
		return
	}
	newParent := a.resolveParent(op.Pid, op.Dirfd2, newPath)
	newKey := fsmodel.InodeKey{Parent: newParent, Base: path.Base(newPath)}
	if newKey == oldKey {
		return
	}
	a.Inodes.AddHardLink(newKey, ino, newPath)
	a.Inodes.RemoveEntry(oldKey)
}

func (a *FSAnalyzer) symlink(op trace.Operation) {
	abspath, ok := a.resolvePath(op.Pid, op.Dirfd, op.Path)
	if !ok {
		return
	}
	parent := a.resolveParent(op.Pid, op.Dirfd, abspath)
	key := fsmodel.InodeKey{Parent: parent, Base: path.Base(abspath)}
	ino := a.Inodes.AddEntry(key, abspath)
	a.Symlinks.Set(ino, op.Path2)
}

func (a *FSAnalyzer) newProc(op trace.Operation) {
	if op.Clone.HasFD() {
		a.Fds.InheritInto(op.Pid, op.NewPid)
	}
	if op.Clone.HasFS() {
		a.Cwds.InheritInto(op.Pid, op.NewPid)
	}
}

func (a *FSAnalyzer) setCwd(op trace.Operation) {
	abspath, ok := a.resolvePath(op.Pid, trace.AtFDCWD, op.Path)
	if !ok {
		if !path.IsAbs(op.Path) {
			return
		}
		abspath = canon(op.Path)
	}
	parentPath, base := path.Dir(abspath), path.Base(abspath)
	var parentInode fsmodel.Inode
	if abspath == "/" {
		parentInode = fsmodel.RootInode
		base = "/"
	} else if pino, ok := a.inodeForPath(parentPath); ok {
		parentInode = pino
	} else {
		parentInode = fsmodel.RootInode
	}
	key := fsmodel.InodeKey{Parent: parentInode, Base: base}
	ino := a.Inodes.AddEntry(key, abspath)
	a.Dirs.Add(abspath)
	a.Cwds.Set(op.Pid, ino)
}

func (a *FSAnalyzer) setCwdFd(op trace.Operation) {
	key, ok := a.Fds.Lookup(op.Pid, op.Fd)
	if !ok {
		return
	}
	ino, ok := a.Inodes.Lookup(key)
	if !ok {
		return
	}
	a.Cwds.Set(op.Pid, ino)
}

// inodeForPath looks up the inode currently bound to an absolute
// path that fsracer has already seen named (typically a directory
// created via a prior setcwd). It does not walk the live filesystem.
func (a *FSAnalyzer) inodeForPath(p string) (fsmodel.Inode, bool) {
	if p == "/" {
		return fsmodel.RootInode, true
	}
	for _, ino := range a.Inodes.AllInodes() {
		if up, ok := a.Inodes.UniquePath(ino); ok && up == p {
			return ino, true
		}
	}
	return 0, false
}

// applyEffect implements ProcessPathEffect: directory-set bookkeeping,
// unlink-on-expunge, and the access-merge fold.
func (a *FSAnalyzer) applyEffect(p string, access trace.AccessType, opName string, debug []string) {
	task := a.currentTask()
	if task == "" {
		return
	}
	if access == trace.AccessProduced && strings.HasPrefix(opName, "mkdir") {
		a.Dirs.Add(p)
	}
	a.Dirs.Add(path.Dir(p))

	if access == trace.AccessExpunged {
		parentPath := path.Dir(p)
		if parent, ok := a.inodeForPath(parentPath); ok {
			a.Inodes.RemoveEntry(fsmodel.InodeKey{Parent: parent, Base: path.Base(p)})
		}
	}

	a.Accesses.Merge(p, fsmodel.FSAccess{
		Task:      task,
		Type:      access,
		Operation: opName,
		Debug:     debug,
	})
}
