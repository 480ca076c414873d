package parser

import "github.com/fsracer/fsracer/internal/trace"

func (p *Parser) parseNewTask(tokens []string) (trace.Record, error) {
	if len(tokens) < 3 {
		return nil, p.errf(tokens[0], "newTask requires a name and a type")
	}
	name := tokens[1]
	switch tokens[2] {
	case "EXTERNAL":
		return trace.NewTaskRecord{Name: name, Task: trace.Task{Name: name, Type: trace.TaskEXT}}, nil
	case "MAIN":
		return trace.NewTaskRecord{Name: name, Task: trace.Task{Name: name, Type: trace.TaskMAIN}}, nil
	case "S", "M", "W":
		if len(tokens) < 4 {
			return nil, p.errf(tokens[2], "scheduling-class task requires a value")
		}
		val, err := p.parseInt(tokens[3])
		if err != nil {
			return nil, err
		}
		var tt trace.TaskType
		switch tokens[2] {
		case "S":
			tt = trace.TaskS
		case "M":
			tt = trace.TaskM
		case "W":
			tt = trace.TaskW
		}
		return trace.NewTaskRecord{Name: name, Task: trace.Task{Name: name, Type: tt, Value: val}}, nil
	default:
		return nil, p.errf(tokens[2], "unknown task type")
	}
}

func (p *Parser) parseDependsOn(tokens []string) (trace.Record, error) {
	if len(tokens) != 3 {
		return nil, p.errf(tokens[0], "dependsOn requires two task names")
	}
	return trace.DependsOnRecord{Source: tokens[1], Target: tokens[2]}, nil
}

func (p *Parser) parseConsumes(tokens []string) (trace.Record, error) {
	if len(tokens) != 3 {
		return nil, p.errf(tokens[0], "consumes requires a task name and a path")
	}
	return trace.ConsumesRecord{Task: tokens[1], Path: canonicalizePath(tokens[2])}, nil
}

func (p *Parser) parseProduces(tokens []string) (trace.Record, error) {
	if len(tokens) != 3 {
		return nil, p.errf(tokens[0], "produces requires a task name and a path")
	}
	return trace.ProducesRecord{Task: tokens[1], Path: canonicalizePath(tokens[2])}, nil
}

func (p *Parser) parseSysOp(tokens []string) (trace.Record, error) {
	switch {
	case len(tokens) == 3 && tokens[2] == "SYNC":
		return trace.SysOpRecord{ID: tokens[1], Mode: trace.Sync}, nil
	case len(tokens) == 4 && tokens[3] == "ASYNC":
		return trace.SysOpRecord{ID: tokens[1], Mode: trace.Async, Task: tokens[2]}, nil
	default:
		return nil, p.errf(tokens[0], "sysop requires '<id> SYNC' or '<id> <task> ASYNC'")
	}
}

func (p *Parser) parseExecTaskBeg(tokens []string) (trace.Record, error) {
	if len(tokens) != 3 || tokens[2] != "{" {
		return nil, p.errf(tokens[0], "execTask requires a name and an opening '{'")
	}
	return trace.ExecTaskBegRecord{Name: tokens[1]}, nil
}
