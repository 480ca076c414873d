// Package fsmodel is the per-process file-system state model:
// inode identity, fd/cwd/symlink tables, and the task access table
// used to resolve paths and record per-task effects on them.
package fsmodel

// Inode is a monotonically increasing synthetic inode number.
type Inode uint64

// RootInode is the fixed inode of "/".
const RootInode Inode = 1

// InodeKey identifies a directory entry independently of any path
// string: a parent inode plus a basename.
type InodeKey struct {
	Parent Inode
	Base   string
}

type linkState int

const (
	linked linkState = iota
	unlinked
)

type openEntry struct {
	state linkState
	count int
}

// InodeTable maps directory entries to inodes (forward) and inodes
// to the set of absolute paths that currently name them (reverse),
// and tracks the open-refcount state machine that governs when a
// removed entry is actually erased.
type InodeTable struct {
	next    Inode
	forward map[InodeKey]Inode
	reverse map[Inode]map[string]struct{}
	open    map[InodeKey]*openEntry
	// keyPath remembers the exact path a given directory-entry key
	// was created or linked with, so removal/close can erase the
	// right reverse-table entry without re-deriving it.
	keyPath map[InodeKey]string
}

// NewInodeTable returns a table pre-seeded with the root inode.
func NewInodeTable() *InodeTable {
	t := &InodeTable{
		next:    RootInode + 1,
		forward: make(map[InodeKey]Inode),
		reverse: make(map[Inode]map[string]struct{}),
		open:    make(map[InodeKey]*openEntry),
		keyPath: make(map[InodeKey]string),
	}
	t.reverse[RootInode] = map[string]struct{}{"/": {}}
	return t
}

// AddEntry creates (or returns, if already present) the inode for
// key, recording fullPath as one of its names.
func (t *InodeTable) AddEntry(key InodeKey, fullPath string) Inode {
	if ino, ok := t.forward[key]; ok {
		t.addPath(ino, fullPath)
		t.keyPath[key] = fullPath
		return ino
	}
	ino := t.next
	t.next++
	t.forward[key] = ino
	t.addPath(ino, fullPath)
	t.keyPath[key] = fullPath
	return ino
}

// AddHardLink records a second name (newKey, fullPath) for an
// already-existing inode, per the `link` operation.
func (t *InodeTable) AddHardLink(newKey InodeKey, existing Inode, fullPath string) {
	t.forward[newKey] = existing
	t.addPath(existing, fullPath)
	t.keyPath[newKey] = fullPath
}

// KeyPath returns the path key was created or linked with.
func (t *InodeTable) KeyPath(key InodeKey) (string, bool) {
	p, ok := t.keyPath[key]
	return p, ok
}

func (t *InodeTable) addPath(ino Inode, fullPath string) {
	if t.reverse[ino] == nil {
		t.reverse[ino] = make(map[string]struct{})
	}
	if fullPath != "" {
		t.reverse[ino][fullPath] = struct{}{}
	}
}

// Lookup returns the inode for key, if any.
func (t *InodeTable) Lookup(key InodeKey) (Inode, bool) {
	ino, ok := t.forward[key]
	return ino, ok
}

// Paths returns every path currently naming ino.
func (t *InodeTable) Paths(ino Inode) []string {
	set := t.reverse[ino]
	if len(set) == 0 {
		return nil
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	return paths
}

// UniquePath returns the single path naming ino, if exactly one
// exists (the case for directories and non-hard-linked files).
func (t *InodeTable) UniquePath(ino Inode) (string, bool) {
	set := t.reverse[ino]
	if len(set) != 1 {
		return "", false
	}
	for p := range set {
		return p, true
	}
	return "", false
}

// RemoveEntry removes key's name from the table. If the entry is
// currently open, it is only marked unlinked; actual erasure happens
// on the last matching CloseInode.
func (t *InodeTable) RemoveEntry(key InodeKey) {
	ino, ok := t.forward[key]
	if !ok {
		return
	}
	if e, open := t.open[key]; open && e.count > 0 {
		e.state = unlinked
		return
	}
	t.erase(key, ino, t.keyPath[key])
}

func (t *InodeTable) erase(key InodeKey, ino Inode, fullPath string) {
	delete(t.forward, key)
	if fullPath != "" && t.reverse[ino] != nil {
		delete(t.reverse[ino], fullPath)
		if len(t.reverse[ino]) == 0 {
			delete(t.reverse, ino)
		}
	}
	delete(t.open, key)
	delete(t.keyPath, key)
}

// OpenInode bumps key's open refcount, creating the tracking entry
// (state LINKED) if this is the first open.
func (t *InodeTable) OpenInode(key InodeKey) {
	e, ok := t.open[key]
	if !ok {
		e = &openEntry{state: linked}
		t.open[key] = e
	}
	e.count++
}

// CloseInode drops key's open refcount by one. On the last close of
// an entry marked UNLINKED, the forward/reverse table entry is
// erased.
func (t *InodeTable) CloseInode(key InodeKey) {
	e, ok := t.open[key]
	if !ok {
		return
	}
	e.count--
	if e.count > 0 {
		return
	}
	wasUnlinked := e.state == unlinked
	delete(t.open, key)
	if wasUnlinked {
		if ino, ok := t.forward[key]; ok {
			t.erase(key, ino, t.keyPath[key])
		}
	}
}

// AllInodes returns every inode currently named by at least one
// path. Order is unspecified; intended for small-scale lookups such
// as resolving setcwd against a previously-seen directory path.
func (t *InodeTable) AllInodes() []Inode {
	inos := make([]Inode, 0, len(t.reverse))
	for ino := range t.reverse {
		inos = append(inos, ino)
	}
	return inos
}

// IsOpen reports whether key currently has an open refcount entry.
func (t *InodeTable) IsOpen(key InodeKey) bool {
	e, ok := t.open[key]
	return ok && e.count > 0
}
