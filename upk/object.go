package upk

// Well-known engine class names. Variant dispatch and the exporter's flag
// rules key off these; everything else becomes a Generic object.
const (
	ClassNameClass            = "Class"
	ClassNamePackage          = "Package"
	ClassNameWorld            = "World"
	ClassNameLevel            = "Level"
	ClassNameMaterial         = "Material"
	ClassNameMaterialInstance = "MaterialInstance"
	ClassNameTexture          = "Texture"
	ClassNameSkeletalMesh     = "SkeletalMesh"
	ClassNameStaticMesh       = "StaticMesh"
)

// Object is a materialized container object. All variants embed ObjectBase;
// the interface is closed over this package.
type Object interface {
	Name() string
	FullName() string
	Container() *Container
	Outer() Object
	Class() *Class
	Archetype() Object
	ObjectFlags() uint64
	RawBody() []byte

	setBody(b []byte)
}

// ObjectBase carries the capability set shared by every variant. The
// back-reference to the owning container is a lookup handle, not an
// ownership edge.
type ObjectBase struct {
	container *Container
	name      string
	fullName  string
	class     *Class
	outer     Object
	archetype Object
	flags     uint64
	body      []byte
}

func (o *ObjectBase) Name() string          { return o.name }
func (o *ObjectBase) FullName() string      { return o.fullName }
func (o *ObjectBase) Container() *Container { return o.container }
func (o *ObjectBase) Outer() Object         { return o.outer }
func (o *ObjectBase) Class() *Class         { return o.class }
func (o *ObjectBase) Archetype() Object     { return o.archetype }
func (o *ObjectBase) ObjectFlags() uint64   { return o.flags }
func (o *ObjectBase) RawBody() []byte       { return o.body }

func (o *ObjectBase) setBody(b []byte) { o.body = b }

// Package is a grouping object; the root package of a container is its
// top-level namespace.
type Package struct {
	ObjectBase
}

// Class is a class object. Native classes are synthesized by the engine and
// have no table row of their own.
type Class struct {
	ObjectBase
	super  *Class
	native bool
}

// Super returns the parent class, or nil at the root of the hierarchy
func (c *Class) Super() *Class { return c.super }

// Native reports whether the class was synthesized rather than decoded
func (c *Class) Native() bool { return c.native }

// Material is a rendering material
type Material struct {
	ObjectBase
}

// MaterialInstance is a parameterized material
type MaterialInstance struct {
	ObjectBase
}

// Texture is an image resource
type Texture struct {
	ObjectBase
}

// SkeletalMesh is a rigged mesh resource
type SkeletalMesh struct {
	ObjectBase
}

// StaticMesh is an unrigged mesh resource
type StaticMesh struct {
	ObjectBase
}

// World is a map's root object
type World struct {
	ObjectBase
}

// Level holds a map's actor list
type Level struct {
	ObjectBase
}

// Generic is the catch-all variant for classes without dedicated handling
type Generic struct {
	ObjectBase
}

// newObjectOf picks the variant for a class by walking the super chain to
// the nearest well-known class name.
func newObjectOf(cls *Class, base ObjectBase) Object {
	for c := cls; c != nil; c = c.Super() {
		switch c.Name() {
		case ClassNamePackage:
			return &Package{ObjectBase: base}
		case ClassNameWorld:
			return &World{ObjectBase: base}
		case ClassNameLevel:
			return &Level{ObjectBase: base}
		case ClassNameMaterialInstance:
			return &MaterialInstance{ObjectBase: base}
		case ClassNameMaterial:
			return &Material{ObjectBase: base}
		case ClassNameTexture:
			return &Texture{ObjectBase: base}
		case ClassNameSkeletalMesh:
			return &SkeletalMesh{ObjectBase: base}
		case ClassNameStaticMesh:
			return &StaticMesh{ObjectBase: base}
		}
	}
	return &Generic{ObjectBase: base}
}
