package fsmodel

import "github.com/fsracer/fsracer/internal/trace"

// FSAccess is the latest recorded effect of a task on a path.
type FSAccess struct {
	Task      string
	Type      trace.AccessType
	Operation string
	Debug     []string
}

type accessKey struct {
	Path string
	Task string
}

// AccessTable holds at most one FSAccess per (path, task) pair,
// updated via the merge rules of MergeAccess.
type AccessTable struct {
	m map[accessKey]FSAccess
	// order preserves first-insertion order per path for
	// deterministic-enough iteration in tests; detector output order
	// is documented as unspecified regardless.
	pathOrder []string
	seenPath  map[string]struct{}
}

func NewAccessTable() *AccessTable {
	return &AccessTable{
		m:        make(map[accessKey]FSAccess),
		seenPath: make(map[string]struct{}),
	}
}

// Merge applies the access-merge rules for a new access to path by
// task, folding it against whatever was previously recorded.
func (t *AccessTable) Merge(path string, next FSAccess) {
	k := accessKey{Path: path, Task: next.Task}
	prev, had := t.m[k]
	result, remove := MergeAccess(prev.Type, had, next.Type)
	if remove {
		delete(t.m, k)
		if len(t.AccessesForPath(path)) == 0 {
			delete(t.seenPath, path)
			for i, p := range t.pathOrder {
				if p == path {
					t.pathOrder = append(t.pathOrder[:i], t.pathOrder[i+1:]...)
					break
				}
			}
		}
		return
	}
	if result == next.Type {
		t.m[k] = next
	} else {
		t.m[k] = prev
	}
	if _, ok := t.seenPath[path]; !ok {
		t.seenPath[path] = struct{}{}
		t.pathOrder = append(t.pathOrder, path)
	}
}

// Get returns the recorded access for (path, task).
func (t *AccessTable) Get(path, task string) (FSAccess, bool) {
	a, ok := t.m[accessKey{Path: path, Task: task}]
	return a, ok
}

// Paths returns every path with at least one recorded access, in
// first-seen order.
func (t *AccessTable) Paths() []string {
	return append([]string(nil), t.pathOrder...)
}

// AccessesForPath returns all recorded accesses to path, across
// tasks. Order is unspecified.
func (t *AccessTable) AccessesForPath(path string) []FSAccess {
	var out []FSAccess
	for k, v := range t.m {
		if k.Path == path {
			out = append(out, v)
		}
	}
	return out
}

// MergeAccess implements the new×prev -> result access-merge table.
// had reports whether a previous access existed at all; when false,
// the "(none)" column applies and result is always next with
// remove == false.
func MergeAccess(prev trace.AccessType, had bool, next trace.AccessType) (result trace.AccessType, remove bool) {
	if !had {
		return next, false
	}
	switch next {
	case trace.AccessConsumed:
		switch prev {
		case trace.AccessProduced, trace.AccessExpunged:
			return prev, false
		default:
			return next, false
		}
	case trace.AccessProduced:
		return next, false
	case trace.AccessTouched:
		switch prev {
		case trace.AccessTouched:
			return next, false
		default:
			return prev, false
		}
	case trace.AccessExpunged:
		if prev == trace.AccessProduced {
			return 0, true
		}
		return next, false
	default:
		return prev, false
	}
}

// FileKind classifies a path for reporting purposes.
type FileKind int

const (
	RegularFile FileKind = iota
	Directory
)

// FileInfo is the finalized per-path record produced by
// UpdateAccessTable: its kind and every task access recorded
// against it.
type FileInfo struct {
	Kind     FileKind
	Accesses []FSAccess
}

// DirectorySet tracks which canonical paths are known to be
// directories.
type DirectorySet struct {
	m map[string]struct{}
}

func NewDirectorySet() *DirectorySet {
	return &DirectorySet{m: make(map[string]struct{})}
}

func (d *DirectorySet) Add(path string) {
	d.m[path] = struct{}{}
}

func (d *DirectorySet) Contains(path string) bool {
	_, ok := d.m[path]
	return ok
}

// UpdateAccessTable folds the per-task access table into a
// path -> FileInfo map, classifying each path as a Directory iff it
// appears in dirs.
func UpdateAccessTable(accesses *AccessTable, dirs *DirectorySet) map[string]*FileInfo {
	out := make(map[string]*FileInfo)
	for _, path := range accesses.Paths() {
		kind := RegularFile
		if dirs.Contains(path) {
			kind = Directory
		}
		out[path] = &FileInfo{
			Kind:     kind,
			Accesses: accesses.AccessesForPath(path),
		}
	}
	return out
}
