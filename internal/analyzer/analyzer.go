// Package analyzer implements the two trace-record consumers that
// together produce the dependency graph and the per-path task
// access table the race detector joins.
package analyzer

import "github.com/fsracer/fsracer/internal/trace"

// Analyzer consumes one trace record at a time. The driver feeds
// every record to every registered Analyzer in registration order.
type Analyzer interface {
	Handle(rec trace.Record) error
}

// scopeStack tracks which task owns subsequent pid-scoped
// operations, derived purely from execTask/sysop/end records. Both
// analyzers maintain their own independent instance, matching the
// original design where every analyzer observes the full record
// stream on its own.
type scopeStack struct {
	execTask string
	haveExec bool

	inSysop        bool
	sysopOwner     string
	haveSysopOwner bool
}

func (s *scopeStack) ExecBeg(name string) {
	s.execTask = name
	s.haveExec = true
}

func (s *scopeStack) SysOpBeg(mode trace.SysOpMode, task string) {
	s.inSysop = true
	if mode == trace.Async {
		s.sysopOwner = task
		s.haveSysopOwner = true
	} else {
		s.haveSysopOwner = false
	}
}

func (s *scopeStack) End() {
	if s.inSysop {
		s.inSysop = false
		s.haveSysopOwner = false
		return
	}
	s.haveExec = false
}

// Current returns the task subsequent operations should be
// attributed to, if any.
func (s *scopeStack) Current() (string, bool) {
	if s.inSysop && s.haveSysopOwner {
		return s.sysopOwner, true
	}
	if s.haveExec {
		return s.execTask, true
	}
	return "", false
}
