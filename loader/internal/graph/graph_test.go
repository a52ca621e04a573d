package graph

import (
	stderrors "errors"
	"testing"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

func node(c string, k int) NodeRef {
	return TableRef(c, upk.FromExport(k))
}

func positions(t *testing.T, g *Graph) map[NodeRef]int {
	t.Helper()
	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort failed: %v", err)
	}
	if len(order) != g.NodeCount() {
		t.Fatalf("order has %d nodes, graph has %d", len(order), g.NodeCount())
	}
	pos := make(map[NodeRef]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	return pos
}

func TestTopoSort_Empty(t *testing.T) {
	g := New()
	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected empty order, got %v", order)
	}
}

func TestTopoSort_EdgesRespected(t *testing.T) {
	g := New()
	a, b, c, d := node("A", 0), node("A", 1), node("A", 2), node("B", 0)

	// d -> a -> b, a -> c
	if err := g.AddEdge(d, a); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(a, c); err != nil {
		t.Fatal(err)
	}

	pos := positions(t, g)
	if pos[d] >= pos[a] {
		t.Errorf("d should precede a: %v", pos)
	}
	if pos[a] >= pos[b] || pos[a] >= pos[c] {
		t.Errorf("a should precede b and c: %v", pos)
	}
}

func TestTopoSort_Idempotence(t *testing.T) {
	g := New()
	a, b := node("A", 0), node("A", 1)

	g.AddNode(a)
	g.AddNode(a)
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	first, err := g.TopoSort()
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.TopoSort()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("duplicate inserts changed node count: %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("orders differ at %d: %v vs %v", i, first, second)
		}
	}
	if len(g.EdgesOf(a)) != 1 {
		t.Errorf("duplicate edge not collapsed: %v", g.EdgesOf(a))
	}
}

func TestAddEdge_SelfEdgeRejected(t *testing.T) {
	g := New()
	a, b := node("A", 0), node("A", 1)
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	err := g.AddEdge(b, b)
	if err == nil {
		t.Fatal("expected SelfEdge error")
	}
	if !stderrors.Is(err, &uerrors.Error{Phase: uerrors.PhaseResolve, Kind: uerrors.KindSelfEdge}) {
		t.Errorf("wrong error: %v", err)
	}

	// Graph unchanged after the failed call.
	if g.NodeCount() != 2 {
		t.Errorf("node count changed: %d", g.NodeCount())
	}
	if len(g.EdgesOf(b)) != 0 {
		t.Errorf("edges of b changed: %v", g.EdgesOf(b))
	}
}

func TestTopoSort_CycleDiagnostic(t *testing.T) {
	g := New()
	a, b, c := node("A", 0), node("A", 1), node("A", 2)
	for _, e := range [][2]NodeRef{{a, b}, {b, c}, {c, a}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	_, err := g.TopoSort()
	if err == nil {
		t.Fatal("expected cycle diagnostic")
	}
	if !stderrors.Is(err, &uerrors.Error{Phase: uerrors.PhaseResolve, Kind: uerrors.KindCycle}) {
		t.Errorf("wrong error kind: %v", err)
	}
}

func TestTopoSort_NativeNodes(t *testing.T) {
	g := New()
	native := NativeRef("A", "Vector")
	imp := TableRef("A", upk.FromImport(0))
	if err := g.AddEdge(native, imp); err != nil {
		t.Fatal(err)
	}

	pos := positions(t, g)
	if pos[native] >= pos[imp] {
		t.Errorf("native class should precede its import: %v", pos)
	}
	if !native.IsNative() || imp.IsNative() {
		t.Error("IsNative misclassified nodes")
	}
}
