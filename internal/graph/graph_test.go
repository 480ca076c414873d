package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeIdempotent(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "first")
	g.AddNode(1, "second")

	obj, ok := g.Node(1)
	require.True(t, ok)
	assert.Equal(t, "first", obj)
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "a")
	g.AddEdge(1, 1, "label")

	assert.Empty(t, g.Dependents(1))
}

func TestAddEdgeRequiresSourceNode(t *testing.T) {
	g := New[string, string]()
	g.AddNode(2, "b")
	g.AddEdge(1, 2, "label")

	assert.Empty(t, g.Dependents(1))
}

func TestReachabilityConsistency(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "u")
	g.AddNode(2, "v")
	g.AddNode(3, "w")
	g.AddEdge(1, 2, "edge")
	g.AddEdge(2, 3, "edge")

	reachable := g.DFS(1)
	assert.Contains(t, reachable, ID(1))
	assert.Contains(t, reachable, ID(2))
	assert.Contains(t, reachable, ID(3))
	assert.True(t, g.HasPath(1, 3))
}

func TestSinks(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "u")
	g.AddNode(2, "v")
	g.AddEdge(1, 2, "edge")

	sinks := g.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, ID(2), sinks[0])
}

func TestNodeAttrs(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "u")
	assert.False(t, g.HasNodeAttr(1, "EXECUTED"))

	g.AddNodeAttr(1, "EXECUTED")
	assert.True(t, g.HasNodeAttr(1, "EXECUTED"))

	g.RemoveNodeAttr(1, "EXECUTED")
	assert.False(t, g.HasNodeAttr(1, "EXECUTED"))
}

func TestEmpty(t *testing.T) {
	g := New[string, string]()
	assert.True(t, g.Empty())
	g.AddNode(1, "u")
	assert.False(t, g.Empty())
}

func TestRemoveEdge(t *testing.T) {
	g := New[string, string]()
	g.AddNode(1, "u")
	g.AddNode(2, "v")
	g.AddEdge(1, 2, "label")
	require.True(t, g.HasPath(1, 2))

	g.RemoveEdge(1, 2, "label")
	assert.False(t, g.HasPath(1, 2))
}
