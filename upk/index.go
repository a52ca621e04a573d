package upk

import (
	"fmt"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
)

// IndexTag classifies an ObjectIndex
type IndexTag int

const (
	TagNull IndexTag = iota
	TagImport
	TagExport
)

func (t IndexTag) String() string {
	switch t {
	case TagImport:
		return "import"
	case TagExport:
		return "export"
	default:
		return "null"
	}
}

// ObjectIndex is a tagged signed reference to a table row. Zero is null,
// a positive value i selects export row i-1, a negative value i selects
// import row -i-1. Equality and hashing use the raw signed integer.
type ObjectIndex int32

// NullIndex returns the null reference
func NullIndex() ObjectIndex { return 0 }

// FromExport returns the reference to export row k
func FromExport(k int) ObjectIndex { return ObjectIndex(k + 1) }

// FromImport returns the reference to import row k
func FromImport(k int) ObjectIndex { return ObjectIndex(-k - 1) }

// Tag returns the reference's classification
func (i ObjectIndex) Tag() IndexTag {
	switch {
	case i > 0:
		return TagExport
	case i < 0:
		return TagImport
	default:
		return TagNull
	}
}

// IsNull reports whether the reference is null
func (i ObjectIndex) IsNull() bool { return i == 0 }

// ExportIndex returns the export row number. Calling it on a non-export
// reference is a programmer error and returns WrongIndexTag.
func (i ObjectIndex) ExportIndex() (int, error) {
	if i <= 0 {
		return 0, uerrors.WrongIndexTag("ExportIndex", int32(i))
	}
	return int(i) - 1, nil
}

// ImportIndex returns the import row number. Calling it on a non-import
// reference is a programmer error and returns WrongIndexTag.
func (i ObjectIndex) ImportIndex() (int, error) {
	if i >= 0 {
		return 0, uerrors.WrongIndexTag("ImportIndex", int32(i))
	}
	return int(-i) - 1, nil
}

func (i ObjectIndex) String() string {
	switch {
	case i > 0:
		return fmt.Sprintf("export:%d", int(i)-1)
	case i < 0:
		return fmt.Sprintf("import:%d", int(-i)-1)
	default:
		return "null"
	}
}

// NameIndex selects a row in a container's name table
type NameIndex int32

// FName is an interned name: a name table index plus an instance number.
// The instance number disambiguates repeated names; instance 0 renders as
// the bare string, instance n as "name_<n-1>".
type FName struct {
	Index  NameIndex
	Number int32
}

// NoneName is the sentinel string marking empty rows
const NoneName = "None"

// FGuid is the container format's 128-bit identifier
type FGuid struct {
	A uint32
	B uint32
	C uint32
	D uint32
}

func (g FGuid) String() string {
	return fmt.Sprintf("%08X%08X%08X%08X", g.A, g.B, g.C, g.D)
}
