// Package graph provides the dependency graph over container objects.
//
// Nodes are (container, reference) pairs; an edge u -> v states that u must
// exist before v. The resolver's construction rules keep the graph acyclic
// for well-formed container sets, so the sort treats a cycle as malformed
// input and reports it instead of recursing forever.
package graph

import (
	"fmt"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

// NodeRef identifies one graph node. Table references carry the owning
// container's name and the tagged index; classes resolved outside any table
// carry a non-empty Native handle instead.
type NodeRef struct {
	Container string
	Index     upk.ObjectIndex
	Native    string
}

// TableRef builds a node for a table row
func TableRef(container string, idx upk.ObjectIndex) NodeRef {
	return NodeRef{Container: container, Index: idx}
}

// NativeRef builds a node for a class with no table row
func NativeRef(container, class string) NodeRef {
	return NodeRef{Container: container, Native: class}
}

// IsNative reports whether the node stands outside the tables
func (n NodeRef) IsNative() bool { return n.Native != "" }

func (n NodeRef) String() string {
	if n.Native != "" {
		return fmt.Sprintf("%s/native:%s", n.Container, n.Native)
	}
	return fmt.Sprintf("%s/%s", n.Container, n.Index)
}

// Graph is a directed dependency graph. Edges are oriented
// dependency -> dependent and collapse duplicates; self-loops are rejected.
type Graph struct {
	adj     map[NodeRef][]NodeRef
	edgeSet map[[2]NodeRef]struct{}
	order   []NodeRef
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		adj:     make(map[NodeRef][]NodeRef),
		edgeSet: make(map[[2]NodeRef]struct{}),
	}
}

// AddNode inserts a node; inserting twice is a no-op
func (g *Graph) AddNode(n NodeRef) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = nil
		g.order = append(g.order, n)
	}
}

// AddEdge inserts the edge from -> to, adding absent endpoints. Duplicate
// edges collapse; a self-loop is a programmer error.
func (g *Graph) AddEdge(from, to NodeRef) error {
	if from == to {
		return uerrors.SelfEdge(from.String())
	}
	g.AddNode(from)
	g.AddNode(to)
	key := [2]NodeRef{from, to}
	if _, ok := g.edgeSet[key]; ok {
		return nil
	}
	g.edgeSet[key] = struct{}{}
	g.adj[from] = append(g.adj[from], to)
	return nil
}

// EdgesOf returns a node's outgoing edges in insertion order
func (g *Graph) EdgesOf(n NodeRef) []NodeRef {
	edges := g.adj[n]
	out := make([]NodeRef, len(edges))
	copy(out, edges)
	return out
}

// HasNode reports whether the node is present
func (g *Graph) HasNode(n NodeRef) bool {
	_, ok := g.adj[n]
	return ok
}

// HasEdge reports whether the edge from -> to is present
func (g *Graph) HasEdge(from, to NodeRef) bool {
	_, ok := g.edgeSet[[2]NodeRef{from, to}]
	return ok
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.adj) }

// TopoSort returns the nodes in dependency order: for every edge u -> v,
// u appears before v. Depth-first post-order from every unvisited root,
// pushed onto a stack and popped to a list. Roots are taken in insertion
// order; a node's children in edge insertion order. A cycle is reported as
// a diagnostic naming a node on it.
func (g *Graph) TopoSort() ([]NodeRef, error) {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[NodeRef]int, len(g.adj))
	stack := make([]NodeRef, 0, len(g.adj))

	var visit func(n NodeRef) error
	visit = func(n NodeRef) error {
		switch state[n] {
		case done:
			return nil
		case onPath:
			return uerrors.Cycle(n.String())
		}
		state[n] = onPath
		for _, m := range g.adj[n] {
			if err := visit(m); err != nil {
				return err
			}
		}
		state[n] = done
		stack = append(stack, n)
		return nil
	}

	for _, n := range g.order {
		if err := visit(n); err != nil {
			return nil, err
		}
	}

	out := make([]NodeRef, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, stack[i])
	}
	return out, nil
}
