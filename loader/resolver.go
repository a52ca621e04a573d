package loader

import (
	"fmt"
	"strings"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/loader/internal/graph"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

// Resolver enumerates object dependencies into a graph. It consults the
// container authority to cross container boundaries and falls back to
// native classes for imports that have no table row in their target.
type Resolver struct {
	containers upk.ContainerResolver
	graph      *graph.Graph
	visited    map[graph.NodeRef]bool
}

// NewResolver builds a resolver writing into g
func NewResolver(containers upk.ContainerResolver, g *graph.Graph) *Resolver {
	return &Resolver{
		containers: containers,
		graph:      g,
		visited:    make(map[graph.NodeRef]bool),
	}
}

// Graph returns the graph under construction
func (r *Resolver) Graph() *graph.Graph { return r.graph }

// AddObjectDependencies enriches the graph with the transitive closure of
// edges reachable from root: outer, class, super, and archetype edges for
// exports; outer and cross-container resolution edges for imports.
func (r *Resolver) AddObjectDependencies(root graph.NodeRef) error {
	r.graph.AddNode(root)
	queue := []graph.NodeRef{root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if r.visited[cur] {
			continue
		}
		r.visited[cur] = true
		if cur.IsNative() {
			continue
		}

		c, ok := r.containers.Resolve(cur.Container)
		if !ok {
			return uerrors.UnresolvedContainer(cur.Container)
		}

		switch cur.Index.Tag() {
		case upk.TagImport:
			k, _ := cur.Index.ImportIndex()
			next, err := r.visitImport(c, cur, k)
			if err != nil {
				return err
			}
			queue = append(queue, next...)
		case upk.TagExport:
			k, _ := cur.Index.ExportIndex()
			next, err := r.visitExport(c, cur, k)
			if err != nil {
				return err
			}
			queue = append(queue, next...)
		}
	}
	return nil
}

func (r *Resolver) visitExport(c *upk.Container, cur graph.NodeRef, k int) ([]graph.NodeRef, error) {
	row := c.Export(k)
	if row == nil {
		return nil, uerrors.InvalidInput(uerrors.PhaseResolve,
			fmt.Sprintf("export row %d out of range in %s", k, c.Name))
	}
	var next []graph.NodeRef
	for _, ref := range [4]upk.ObjectIndex{row.Outer, row.Class, row.Super, row.Archetype} {
		if ref.IsNull() {
			continue
		}
		dep := graph.TableRef(cur.Container, ref)
		if err := r.graph.AddEdge(dep, cur); err != nil {
			return nil, err
		}
		next = append(next, dep)
	}
	return next, nil
}

func (r *Resolver) visitImport(c *upk.Container, cur graph.NodeRef, k int) ([]graph.NodeRef, error) {
	row := c.Import(k)
	if row == nil {
		return nil, uerrors.InvalidInput(uerrors.PhaseResolve,
			fmt.Sprintf("import row %d out of range in %s", k, c.Name))
	}

	if row.Outer.IsNull() {
		// Top-level container reference. It resolves to the target's root
		// package; a self reference needs no edge at all.
		name, err := c.NameString(row.ObjectName)
		if err != nil {
			return nil, err
		}
		if name == c.Name {
			return nil, nil
		}
		if _, ok := r.containers.Resolve(name); !ok {
			return nil, uerrors.UnresolvedContainer(name)
		}
		return nil, r.graph.AddEdge(graph.NativeRef(name, upk.ClassNamePackage), cur)
	}

	var next []graph.NodeRef
	dep := graph.TableRef(cur.Container, row.Outer)
	if err := r.graph.AddEdge(dep, cur); err != nil {
		return nil, err
	}
	next = append(next, dep)

	if r.isNativeImport(c, k) {
		// The import's top-level package self-identifies as this container:
		// the class is synthesized natively and has no row elsewhere.
		clsName, err := c.NameString(row.ObjectName)
		if err != nil {
			return nil, err
		}
		if c.FindClass(clsName) == nil {
			full, _ := c.FullName(upk.FromImport(k))
			return nil, uerrors.UnresolvedImport(full)
		}
		if err := r.graph.AddEdge(graph.NativeRef(cur.Container, clsName), cur); err != nil {
			return nil, err
		}
		return next, nil
	}

	ref, err := r.resolveImport(c, k)
	if err != nil {
		return nil, err
	}
	if err := r.graph.AddEdge(ref, cur); err != nil {
		return nil, err
	}
	if !ref.IsNative() {
		next = append(next, ref)
	}
	return next, nil
}

// isNativeImport reports whether the import's outer chain tops out at this
// container itself.
func (r *Resolver) isNativeImport(c *upk.Container, k int) bool {
	_, pkgRow := c.ImportPackage(k)
	if pkgRow == nil {
		return false
	}
	name, err := c.NameString(pkgRow.ObjectName)
	return err == nil && name == c.Name
}

// resolveImport finds the row or native class an import names in its
// target container. Exports are searched first, then imports, then the
// target's native class registry.
func (r *Resolver) resolveImport(c *upk.Container, k int) (graph.NodeRef, error) {
	_, pkgRow := c.ImportPackage(k)
	target, err := c.NameString(pkgRow.ObjectName)
	if err != nil {
		return graph.NodeRef{}, err
	}

	tc, ok := r.containers.Resolve(target)
	if !ok {
		return graph.NodeRef{}, uerrors.UnresolvedContainer(target)
	}

	full, err := c.FullName(upk.FromImport(k))
	if err != nil {
		return graph.NodeRef{}, err
	}
	if full == target {
		return graph.NativeRef(target, upk.ClassNamePackage), nil
	}
	rel := strings.TrimPrefix(full, target+".")
	leaf := rel[strings.LastIndexByte(rel, '.')+1:]

	for i := range tc.Exports {
		name, err := tc.NameString(tc.Exports[i].ObjectName)
		if err != nil || name != leaf {
			continue
		}
		fn, err := tc.FullName(upk.FromExport(i))
		if err == nil && fn == rel {
			return graph.TableRef(target, upk.FromExport(i)), nil
		}
	}
	for i := range tc.Imports {
		name, err := tc.NameString(tc.Imports[i].ObjectName)
		if err != nil || name != leaf {
			continue
		}
		fn, err := tc.FullName(upk.FromImport(i))
		if err == nil && fn == rel {
			return graph.TableRef(target, upk.FromImport(i)), nil
		}
	}
	if cls := tc.FindClass(leaf); cls != nil {
		return graph.NativeRef(target, leaf), nil
	}
	return graph.NodeRef{}, uerrors.UnresolvedImport(full)
}
