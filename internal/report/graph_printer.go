package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/fsracer/fsracer/internal/analyzer"
	"github.com/fsracer/fsracer/internal/graph"
	"github.com/fsracer/fsracer/internal/trace"
)

type depGraph = graph.Graph[analyzer.NodePayload, trace.EdgeLabel]

// includedNodes applies the "nodes/edges incident on a task without
// the EXECUTED attribute are omitted" filter. File nodes are always
// included.
func includedNodes(g *depGraph) map[graph.ID]bool {
	out := make(map[graph.ID]bool)
	for _, id := range g.Nodes() {
		payload, ok := g.Node(id)
		if !ok {
			continue
		}
		if payload.IsTask && !g.HasNodeAttr(id, analyzer.Executed) {
			continue
		}
		out[id] = true
	}
	return out
}

func nodeName(p analyzer.NodePayload) string {
	if p.IsTask {
		return p.Task.Name
	}
	return p.Path
}

func nodeLabel(p analyzer.NodePayload) string {
	if p.IsTask {
		return fmt.Sprintf("task:%s[%s %d]", p.Task.Name, p.Task.Type.String(), p.Task.Value)
	}
	return "file:" + p.Path
}

func sortedIDs(g *depGraph) []graph.ID {
	ids := g.Nodes()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DOTPrinter renders the dependency graph as Graphviz DOT.
type DOTPrinter struct {
	W io.Writer
}

func (p *DOTPrinter) Print(g *depGraph) error {
	included := includedNodes(g)
	if _, err := fmt.Fprintln(p.W, "digraph fsracer {"); err != nil {
		return err
	}
	for _, id := range sortedIDs(g) {
		if !included[id] {
			continue
		}
		payload, _ := g.Node(id)
		if _, err := fmt.Fprintf(p.W, "  n%d [label=%q];\n", int(id), nodeLabel(payload)); err != nil {
			return err
		}
	}
	for _, id := range sortedIDs(g) {
		if !included[id] {
			continue
		}
		for _, e := range g.Dependents(id) {
			if !included[e.To] {
				continue
			}
			if _, err := fmt.Fprintf(p.W, "  n%d -> n%d [label=%q];\n", int(id), int(e.To), e.Label.String()); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(p.W, "}")
	return err
}

// CSVPrinter renders the dependency graph as a source,target,label
// edge list.
type CSVPrinter struct {
	w *csv.Writer
}

func NewCSVPrinter(w io.Writer) *CSVPrinter {
	return &CSVPrinter{w: csv.NewWriter(w)}
}

func (p *CSVPrinter) Print(g *depGraph) error {
	included := includedNodes(g)
	if err := p.w.Write([]string{"source", "target", "label"}); err != nil {
		return err
	}
	for _, id := range sortedIDs(g) {
		if !included[id] {
			continue
		}
		from, _ := g.Node(id)
		for _, e := range g.Dependents(id) {
			if !included[e.To] {
				continue
			}
			to, _ := g.Node(e.To)
			if err := p.w.Write([]string{nodeName(from), nodeName(to), e.Label.String()}); err != nil {
				return err
			}
		}
	}
	p.w.Flush()
	return p.w.Error()
}
