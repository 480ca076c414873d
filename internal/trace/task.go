// Package trace defines the algebraic trace record model FSRacer
// consumes: task declarations, dependency edges, and per-process
// system-call effects.
package trace

import "fmt"

// TaskType is a task's scheduling class.
type TaskType int

const (
	TaskS TaskType = iota
	TaskM
	TaskW
	TaskEXT
	TaskMAIN
)

func (t TaskType) String() string {
	switch t {
	case TaskS:
		return "S"
	case TaskM:
		return "M"
	case TaskW:
		return "W"
	case TaskEXT:
		return "EXTERNAL"
	case TaskMAIN:
		return "MAIN"
	default:
		return fmt.Sprintf("TaskType(%d)", int(t))
	}
}

// Task is a unit of computation declared by a newTask record.
type Task struct {
	Name  string
	Type  TaskType
	Value int
}

// EdgeLabel tags a dependency-graph edge between two task nodes, or
// between a task and a file node.
type EdgeLabel int

const (
	HappensBefore EdgeLabel = iota
	Creates
	Consumes
	Produces
)

func (l EdgeLabel) String() string {
	switch l {
	case HappensBefore:
		return "HAPPENS_BEFORE"
	case Creates:
		return "CREATES"
	case Consumes:
		return "CONSUMES"
	case Produces:
		return "PRODUCES"
	default:
		return fmt.Sprintf("EdgeLabel(%d)", int(l))
	}
}

// AccessType is the kind of effect a task's operation has on a path.
type AccessType int

const (
	AccessConsumed AccessType = iota
	AccessProduced
	AccessTouched
	AccessExpunged
)

func (a AccessType) String() string {
	switch a {
	case AccessConsumed:
		return "consumed"
	case AccessProduced:
		return "produced"
	case AccessTouched:
		return "touched"
	case AccessExpunged:
		return "expunged"
	default:
		return fmt.Sprintf("AccessType(%d)", int(a))
	}
}

// ParseAccessType parses one of the four access-keyword tokens.
func ParseAccessType(s string) (AccessType, bool) {
	switch s {
	case "consumed":
		return AccessConsumed, true
	case "produced":
		return AccessProduced, true
	case "touched":
		return AccessTouched, true
	case "expunged":
		return AccessExpunged, true
	default:
		return 0, false
	}
}

// SysOpMode distinguishes a sysop's ownership rule for the
// operations nested inside it.
type SysOpMode int

const (
	Sync SysOpMode = iota
	Async
)

// CloneMode controls what a newproc record inherits from its parent.
type CloneMode int

const (
	CloneNone CloneMode = iota
	CloneFD
	CloneFS
	CloneFDFS
)

func ParseCloneMode(s string) (CloneMode, bool) {
	switch s {
	case "none":
		return CloneNone, true
	case "fd":
		return CloneFD, true
	case "fs":
		return CloneFS, true
	case "fdfs":
		return CloneFDFS, true
	default:
		return 0, false
	}
}

func (m CloneMode) HasFD() bool { return m == CloneFD || m == CloneFDFS }
func (m CloneMode) HasFS() bool { return m == CloneFS || m == CloneFDFS }

// AtFDCWD is the sentinel dirfd value meaning "relative to the
// calling process's current working directory".
const AtFDCWD = 0
