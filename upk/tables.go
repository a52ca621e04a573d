package upk

// Row is a table row returned by Container.Row: either *ImportRow or
// *ExportRow.
type Row interface {
	isRow()
}

// ImportRow names an object that lives in another container. An import
// whose Outer is null is a top-level container reference.
type ImportRow struct {
	ClassPackage FName
	ClassName    FName
	Outer        ObjectIndex
	ObjectName   FName
}

func (*ImportRow) isRow() {}

// ExportRow describes one object serialized in this container. The byte
// range [SerialOffset, SerialOffset+SerialSize) holds the object's body.
// A null Class marks the distinguished class of classes.
type ExportRow struct {
	Class      ObjectIndex
	Super      ObjectIndex
	Outer      ObjectIndex
	ObjectName FName
	Archetype  ObjectIndex

	ObjectFlags    uint64
	SerialSize     int32
	SerialOffset   int32
	ExportFlags    uint32
	NetObjectCount int32
	Guid           FGuid
	PackageFlags   uint32
}

func (*ExportRow) isRow() {}
