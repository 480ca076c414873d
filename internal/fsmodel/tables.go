package fsmodel

// FdKey identifies a per-process open file descriptor.
type FdKey struct {
	Pid int
	Fd  int
}

// FdTable maps (pid, fd) to the directory-entry key it currently
// names.
type FdTable struct {
	m map[FdKey]InodeKey
}

func NewFdTable() *FdTable {
	return &FdTable{m: make(map[FdKey]InodeKey)}
}

func (t *FdTable) Insert(pid, fd int, key InodeKey) {
	t.m[FdKey{Pid: pid, Fd: fd}] = key
}

func (t *FdTable) Lookup(pid, fd int) (InodeKey, bool) {
	key, ok := t.m[FdKey{Pid: pid, Fd: fd}]
	return key, ok
}

func (t *FdTable) Remove(pid, fd int) (InodeKey, bool) {
	k := FdKey{Pid: pid, Fd: fd}
	key, ok := t.m[k]
	if ok {
		delete(t.m, k)
	}
	return key, ok
}

// Dup copies the entry at (pid, oldFd) to (pid, newFd), if present.
func (t *FdTable) Dup(pid, oldFd, newFd int) {
	if key, ok := t.Lookup(pid, oldFd); ok {
		t.Insert(pid, newFd, key)
	}
}

// InheritInto copies every fd belonging to pid into newPid, for the
// newproc "fd"/"fdfs" clone modes.
func (t *FdTable) InheritInto(pid, newPid int) {
	for k, v := range t.m {
		if k.Pid == pid {
			t.m[FdKey{Pid: newPid, Fd: k.Fd}] = v
		}
	}
}

// CwdTable maps a pid to the inode of its current working directory.
type CwdTable struct {
	m map[int]Inode
}

func NewCwdTable() *CwdTable {
	return &CwdTable{m: make(map[int]Inode)}
}

func (t *CwdTable) Set(pid int, ino Inode) {
	t.m[pid] = ino
}

func (t *CwdTable) Get(pid int) (Inode, bool) {
	ino, ok := t.m[pid]
	return ino, ok
}

// InheritInto copies pid's cwd into newPid, for the newproc
// "fs"/"fdfs" clone modes.
func (t *CwdTable) InheritInto(pid, newPid int) {
	if ino, ok := t.m[pid]; ok {
		t.m[newPid] = ino
	}
}

// SymlinkTable maps an inode to the target path it was created with.
// hpath dereferences through it one step; hpathsym does not.
type SymlinkTable struct {
	m map[Inode]string
}

func NewSymlinkTable() *SymlinkTable {
	return &SymlinkTable{m: make(map[Inode]string)}
}

func (t *SymlinkTable) Set(ino Inode, target string) {
	t.m[ino] = target
}

func (t *SymlinkTable) Get(ino Inode) (string, bool) {
	target, ok := t.m[ino]
	return target, ok
}
