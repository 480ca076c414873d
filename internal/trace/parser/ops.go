package parser

import "github.com/fsracer/fsracer/internal/trace"

func (p *Parser) parseOp(pid int, tokens []string, debug []string) (trace.Record, error) {
	if len(tokens) == 0 {
		return nil, p.errf("", "expected an operation after pid")
	}
	name, rest := tokens[0], tokens[1:]
	switch name {
	case "newfd":
		return p.opNewFd(pid, rest, debug)
	case "delfd":
		return p.opDelFd(pid, rest, debug)
	case "dupfd":
		return p.opDupFd(pid, rest, debug)
	case "hpath":
		return p.opHpath(pid, rest, debug, trace.OpHpath)
	case "hpathsym":
		return p.opHpath(pid, rest, debug, trace.OpHpathSym)
	case "link":
		return p.opLinkOrRename(pid, rest, debug, trace.OpLink)
	case "rename":
		return p.opLinkOrRename(pid, rest, debug, trace.OpRename)
	case "symlink":
		return p.opSymlink(pid, rest, debug)
	case "newproc":
		return p.opNewProc(pid, rest, debug)
	case "setcwd":
		return p.opSetCwd(pid, rest, debug)
	case "setcwdfd":
		return p.opSetCwdFd(pid, rest, debug)
	default:
		return nil, p.errf(name, "unknown operation")
	}
}

func (p *Parser) opNewFd(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 3 {
		return nil, p.errf("newfd", "requires dirfd, path, fd")
	}
	dirfd, err := p.parseDirfd(rest[0])
	if err != nil {
		return nil, err
	}
	fd, err := p.parseInt(rest[2])
	if err != nil {
		return nil, err
	}
	op := trace.Operation{
		Pid: pid, Kind: trace.OpNewFd,
		Dirfd: dirfd, Path: canonicalizePath(rest[1]),
		Fd: fd, Debug: debug,
	}
	if fd < 0 {
		op.Failed = true
	}
	return trace.OpRecord{Op: op}, nil
}

func (p *Parser) opDelFd(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 1 {
		return nil, p.errf("delfd", "requires a single fd")
	}
	fd, err := p.parseInt(rest[0])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{Pid: pid, Kind: trace.OpDelFd, Fd: fd, Debug: debug}}, nil
}

func (p *Parser) opDupFd(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 2 {
		return nil, p.errf("dupfd", "requires old and new fd")
	}
	oldFd, err := p.parseInt(rest[0])
	if err != nil {
		return nil, err
	}
	newFd, err := p.parseInt(rest[1])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{Pid: pid, Kind: trace.OpDupFd, Fd: oldFd, NewFd: newFd, Debug: debug}}, nil
}

func (p *Parser) opHpath(pid int, rest, debug []string, kind trace.OpKind) (trace.Record, error) {
	if len(rest) != 3 {
		return nil, p.errf(kind.String(), "requires dirfd, path, access")
	}
	dirfd, err := p.parseDirfd(rest[0])
	if err != nil {
		return nil, err
	}
	acc, ok := trace.ParseAccessType(rest[2])
	if !ok {
		return nil, p.errf(rest[2], "unknown access type")
	}
	return trace.OpRecord{Op: trace.Operation{
		Pid: pid, Kind: kind, Dirfd: dirfd, Path: canonicalizePath(rest[1]),
		Access: acc, Debug: debug,
	}}, nil
}

func (p *Parser) opLinkOrRename(pid int, rest, debug []string, kind trace.OpKind) (trace.Record, error) {
	if len(rest) != 4 {
		return nil, p.errf(kind.String(), "requires dirfd, path, dirfd, path")
	}
	d1, err := p.parseDirfd(rest[0])
	if err != nil {
		return nil, err
	}
	d2, err := p.parseDirfd(rest[2])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{
		Pid: pid, Kind: kind,
		Dirfd: d1, Path: canonicalizePath(rest[1]),
		Dirfd2: d2, Path2: canonicalizePath(rest[3]),
		Debug: debug,
	}}, nil
}

func (p *Parser) opSymlink(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 3 {
		return nil, p.errf("symlink", "requires dirfd, path, target")
	}
	dirfd, err := p.parseDirfd(rest[0])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{
		Pid: pid, Kind: trace.OpSymlink,
		Dirfd: dirfd, Path: canonicalizePath(rest[1]),
		Path2: canonicalizePath(rest[2]), Debug: debug,
	}}, nil
}

func (p *Parser) opNewProc(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 2 {
		return nil, p.errf("newproc", "requires clone mode and new pid")
	}
	mode, ok := trace.ParseCloneMode(rest[0])
	if !ok {
		return nil, p.errf(rest[0], "unknown clone mode")
	}
	newPid, err := p.parseInt(rest[1])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{
		Pid: pid, Kind: trace.OpNewProc, Clone: mode, NewPid: newPid, Debug: debug,
	}}, nil
}

func (p *Parser) opSetCwd(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 1 {
		return nil, p.errf("setcwd", "requires a path")
	}
	return trace.OpRecord{Op: trace.Operation{
		Pid: pid, Kind: trace.OpSetCwd, Path: canonicalizePath(rest[0]), Debug: debug,
	}}, nil
}

func (p *Parser) opSetCwdFd(pid int, rest, debug []string) (trace.Record, error) {
	if len(rest) != 1 {
		return nil, p.errf("setcwdfd", "requires an fd")
	}
	fd, err := p.parseInt(rest[0])
	if err != nil {
		return nil, err
	}
	return trace.OpRecord{Op: trace.Operation{Pid: pid, Kind: trace.OpSetCwdFd, Fd: fd, Debug: debug}}, nil
}
