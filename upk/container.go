package upk

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
)

// ContainerResolver crosses container boundaries: it maps a container name
// to a loaded Container. The loader package provides the implementation.
type ContainerResolver interface {
	Resolve(name string) (*Container, bool)
}

// Container is one decoded container: header, tables, and the objects
// materialized so far. It is mutated during its own load; the exporter
// works on cloned tables but materializes, on this container, any export
// it writes that is not yet materialized.
type Container struct {
	Name    string
	Summary FileSummary
	Names   *NameTable
	Imports []ImportRow
	Exports []ExportRow

	data        []byte
	objects     map[ObjectIndex]Object
	natives     map[string]*Class
	classClass  *Class
	rootPackage *Package
	resolver    ContainerResolver
	codecs      *CodecRegistry
}

// NewContainer assembles a container from decoded parts. data is the full
// container byte stream; export bodies are sliced out of it lazily.
func NewContainer(name string, summary FileSummary, names *NameTable, imports []ImportRow, exports []ExportRow, data []byte) *Container {
	return &Container{
		Name:    name,
		Summary: summary,
		Names:   names,
		Imports: imports,
		Exports: exports,
		data:    data,
		objects: make(map[ObjectIndex]Object),
		natives: make(map[string]*Class),
		codecs:  NewCodecRegistry(),
	}
}

// SetResolver installs the authority consulted when an import crosses into
// another container.
func (c *Container) SetResolver(r ContainerResolver) { c.resolver = r }

// SetCodecRegistry replaces the body codec registry (identity by default)
func (c *Container) SetCodecRegistry(r *CodecRegistry) { c.codecs = r }

// NameString resolves an FName to its rendered string
func (c *Container) NameString(n FName) (string, error) {
	s, ok := c.Names.Lookup(n.Index)
	if !ok {
		return "", uerrors.BadNameReference(c.Name, int32(n.Index), c.Names.Len())
	}
	if n.Number > 0 {
		return fmt.Sprintf("%s_%d", s, n.Number-1), nil
	}
	return s, nil
}

// Import returns import row k, or nil when out of range
func (c *Container) Import(k int) *ImportRow {
	if k < 0 || k >= len(c.Imports) {
		return nil
	}
	return &c.Imports[k]
}

// Export returns export row k, or nil when out of range
func (c *Container) Export(k int) *ExportRow {
	if k < 0 || k >= len(c.Exports) {
		return nil
	}
	return &c.Exports[k]
}

// Row dispatches on the reference tag. Null and out-of-range references
// return nil.
func (c *Container) Row(idx ObjectIndex) Row {
	switch idx.Tag() {
	case TagImport:
		k, _ := idx.ImportIndex()
		if r := c.Import(k); r != nil {
			return r
		}
	case TagExport:
		k, _ := idx.ExportIndex()
		if r := c.Export(k); r != nil {
			return r
		}
	}
	return nil
}

// ImportPackage walks an import's outer chain to its top-level row, the
// container reference the import resolves through. Returns the top row's
// index and the row itself.
func (c *Container) ImportPackage(k int) (int, *ImportRow) {
	row := c.Import(k)
	for row != nil && !row.Outer.IsNull() {
		next, err := row.Outer.ImportIndex()
		if err != nil {
			break
		}
		nrow := c.Import(next)
		if nrow == nil {
			break
		}
		k, row = next, nrow
	}
	return k, row
}

// FullName joins the row's name with its chain of outer names, separated
// by dots. Import chains may cross between this container's import rows;
// export chains stay within the export table.
func (c *Container) FullName(idx ObjectIndex) (string, error) {
	var segs []string
	seen := make(map[ObjectIndex]bool)
	for !idx.IsNull() {
		if seen[idx] {
			return "", uerrors.Cycle(fmt.Sprintf("%s/%s", c.Name, idx))
		}
		seen[idx] = true
		switch row := c.Row(idx).(type) {
		case *ImportRow:
			s, err := c.NameString(row.ObjectName)
			if err != nil {
				return "", err
			}
			segs = append(segs, s)
			idx = row.Outer
		case *ExportRow:
			s, err := c.NameString(row.ObjectName)
			if err != nil {
				return "", err
			}
			segs = append(segs, s)
			idx = row.Outer
		default:
			return "", uerrors.InvalidInput(uerrors.PhaseResolve,
				fmt.Sprintf("reference %s out of range in %s", idx, c.Name))
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "."), nil
}

// ClassClass returns the distinguished class of classes
func (c *Container) ClassClass() *Class {
	if c.classClass == nil {
		cls := &Class{
			ObjectBase: ObjectBase{
				container: c,
				name:      ClassNameClass,
				fullName:  ClassNameClass,
			},
			native: true,
		}
		cls.class = cls
		c.classClass = cls
	}
	return c.classClass
}

// RegisterNativeClass registers (or returns) a class synthesized by the
// engine with no table row in this container.
func (c *Container) RegisterNativeClass(name string) *Class {
	if cls, ok := c.natives[name]; ok {
		return cls
	}
	cls := &Class{
		ObjectBase: ObjectBase{
			container: c,
			name:      name,
			fullName:  name,
			class:     c.ClassClass(),
		},
		native: true,
	}
	c.natives[name] = cls
	return cls
}

// FindClass returns a registered native class, or nil
func (c *Container) FindClass(name string) *Class {
	return c.natives[name]
}

// RootPackage returns the container's top-level package object
func (c *Container) RootPackage() *Package {
	if c.rootPackage == nil {
		c.rootPackage = &Package{
			ObjectBase: ObjectBase{
				container: c,
				name:      c.Name,
				fullName:  c.Name,
				class:     c.RegisterNativeClass(ClassNamePackage),
			},
		}
	}
	return c.rootPackage
}

// Object returns the materialized object for a reference, or nil
func (c *Container) Object(idx ObjectIndex) Object {
	return c.objects[idx]
}

// FindObjectByFullName searches the materialized exports for a full name
// (relative to this container, no leading container segment).
func (c *Container) FindObjectByFullName(fullName string) Object {
	for i := range c.Exports {
		obj := c.objects[FromExport(i)]
		if obj != nil && obj.FullName() == fullName {
			return obj
		}
	}
	return nil
}

// BodyBytes returns the byte range encoding an export's body
func (c *Container) BodyBytes(row *ExportRow) ([]byte, error) {
	if row.SerialSize == 0 {
		return nil, nil
	}
	lo, hi := int(row.SerialOffset), int(row.SerialOffset)+int(row.SerialSize)
	if lo < 0 || hi > len(c.data) || lo > hi {
		return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindTruncatedTable).
			Container(c.Name).
			Detail("body range [%d, %d) exceeds stream of %d bytes", lo, hi, len(c.data)).
			Build()
	}
	return c.data[lo:hi], nil
}

// CreateObject materializes the object behind a reference. All of the
// reference's dependencies must already be materialized; the loader
// guarantees this by constructing in topological order. Materializing an
// already-built object is a no-op.
func (c *Container) CreateObject(idx ObjectIndex) (Object, error) {
	if obj := c.objects[idx]; obj != nil {
		return obj, nil
	}
	switch idx.Tag() {
	case TagExport:
		k, _ := idx.ExportIndex()
		return c.createExportObject(k)
	case TagImport:
		k, _ := idx.ImportIndex()
		return c.bindImportObject(k)
	default:
		return nil, uerrors.InvalidInput(uerrors.PhaseLoad, "cannot materialize the null reference")
	}
}

func (c *Container) createExportObject(k int) (Object, error) {
	row := c.Export(k)
	if row == nil {
		return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
			fmt.Sprintf("export row %d out of range in %s", k, c.Name))
	}
	idx := FromExport(k)
	fullName, err := c.FullName(idx)
	if err != nil {
		return nil, err
	}

	var outer Object
	if row.Outer.IsNull() {
		outer = c.RootPackage()
	} else if outer = c.objects[row.Outer]; outer == nil {
		return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotMaterialized).
			Container(c.Name).
			Object(fullName).
			Detail("outer %s not materialized", row.Outer).
			Build()
	}

	var archetype Object
	if !row.Archetype.IsNull() {
		if archetype = c.objects[row.Archetype]; archetype == nil {
			return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotMaterialized).
				Container(c.Name).
				Object(fullName).
				Detail("archetype %s not materialized", row.Archetype).
				Build()
		}
	}

	name, err := c.NameString(row.ObjectName)
	if err != nil {
		return nil, err
	}

	base := ObjectBase{
		container: c,
		name:      name,
		fullName:  fullName,
		outer:     outer,
		archetype: archetype,
		flags:     row.ObjectFlags,
	}

	var obj Object
	if row.Class.IsNull() {
		// A null class reference marks this export as a class itself.
		cls := &Class{ObjectBase: base}
		cls.class = c.ClassClass()
		if !row.Super.IsNull() {
			super, ok := c.objects[row.Super].(*Class)
			if !ok {
				return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotMaterialized).
					Container(c.Name).
					Object(fullName).
					Detail("super %s not materialized as a class", row.Super).
					Build()
			}
			cls.super = super
		}
		obj = cls
	} else {
		clsObj := c.objects[row.Class]
		if clsObj == nil {
			return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotMaterialized).
				Container(c.Name).
				Object(fullName).
				Detail("class %s not materialized", row.Class).
				Build()
		}
		cls, ok := clsObj.(*Class)
		if !ok {
			return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
				fmt.Sprintf("class reference %s of %s is not a class", row.Class, fullName))
		}
		base.class = cls
		obj = newObjectOf(cls, base)
	}

	body, err := c.BodyBytes(row)
	if err != nil {
		return nil, err
	}
	if body != nil {
		codec := c.codecs.Lookup(obj.Class())
		if err := codec.DecodeBody(obj, body); err != nil {
			return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindIO).
				Container(c.Name).
				Object(fullName).
				Cause(err).
				Detail("decode body").
				Build()
		}
	}

	c.objects[idx] = obj
	Logger().Debug("materialized export",
		zap.String("container", c.Name),
		zap.String("object", fullName))
	return obj, nil
}

// bindImportObject resolves an import row to the object it names in its
// target container and records the binding. The target object must already
// be materialized; topological order guarantees it.
func (c *Container) bindImportObject(k int) (Object, error) {
	row := c.Import(k)
	if row == nil {
		return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
			fmt.Sprintf("import row %d out of range in %s", k, c.Name))
	}
	idx := FromImport(k)
	fullName, err := c.FullName(idx)
	if err != nil {
		return nil, err
	}

	_, pkgRow := c.ImportPackage(k)
	target, err := c.NameString(pkgRow.ObjectName)
	if err != nil {
		return nil, err
	}

	var tc *Container
	if target == c.Name {
		tc = c
	} else {
		if c.resolver == nil {
			return nil, uerrors.UnresolvedContainer(target)
		}
		var ok bool
		if tc, ok = c.resolver.Resolve(target); !ok {
			return nil, uerrors.UnresolvedContainer(target)
		}
	}

	var obj Object
	if fullName == target {
		// Top-level container reference: bind to the target's root package.
		obj = tc.RootPackage()
	} else {
		rel := strings.TrimPrefix(fullName, target+".")
		if obj = tc.FindObjectByFullName(rel); obj == nil {
			// The target may itself reach the object through an import.
			for i := range tc.Imports {
				fn, err := tc.FullName(FromImport(i))
				if err == nil && fn == rel && tc.objects[FromImport(i)] != nil {
					obj = tc.objects[FromImport(i)]
					break
				}
			}
		}
		if obj == nil {
			leaf := rel[strings.LastIndexByte(rel, '.')+1:]
			if cls := tc.FindClass(leaf); cls != nil {
				obj = cls
			}
		}
	}
	if obj == nil {
		return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotMaterialized).
			Container(c.Name).
			Object(fullName).
			Detail("import target not materialized in %s", target).
			Build()
	}

	c.objects[idx] = obj
	return obj, nil
}
