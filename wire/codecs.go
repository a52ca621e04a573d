package wire

import (
	"io"

	"github.com/JetF0x/RL-UPKSuite/upk"
)

// DefaultCodecs returns the standard little-endian codec set
func DefaultCodecs() upk.Codecs {
	return upk.Codecs{
		Summary: SummaryCodec{},
		Name:    NameCodec{},
		Import:  ImportCodec{},
		Export:  ExportCodec{},
		Index:   IndexCodec{},
		FName:   FNameCodec{},
	}
}

// IndexCodec encodes ObjectIndex as one 32-bit two's complement integer
type IndexCodec struct{}

func (IndexCodec) Decode(r io.Reader) (upk.ObjectIndex, error) {
	v, err := readI32(r)
	return upk.ObjectIndex(v), err
}

func (IndexCodec) Encode(w io.Writer, v upk.ObjectIndex) error {
	return writeI32(w, int32(v))
}

// FNameCodec encodes FName as name index then instance number
type FNameCodec struct{}

func (FNameCodec) Decode(r io.Reader) (upk.FName, error) {
	idx, err := readI32(r)
	if err != nil {
		return upk.FName{}, err
	}
	num, err := readI32(r)
	if err != nil {
		return upk.FName{}, err
	}
	return upk.FName{Index: upk.NameIndex(idx), Number: num}, nil
}

func (FNameCodec) Encode(w io.Writer, v upk.FName) error {
	if err := writeI32(w, int32(v.Index)); err != nil {
		return err
	}
	return writeI32(w, v.Number)
}

// NameCodec encodes one name table row: string plus a 64-bit flags word
type NameCodec struct{}

func (NameCodec) Decode(r io.Reader) (upk.NameEntry, error) {
	s, err := readString(r)
	if err != nil {
		return upk.NameEntry{}, err
	}
	flags, err := readU64(r)
	if err != nil {
		return upk.NameEntry{}, err
	}
	return upk.NameEntry{Name: s, Flags: flags}, nil
}

func (NameCodec) Encode(w io.Writer, v upk.NameEntry) error {
	if err := writeString(w, v.Name); err != nil {
		return err
	}
	return writeU64(w, v.Flags)
}

// ImportCodec encodes one import table row
type ImportCodec struct{}

func (ImportCodec) Decode(r io.Reader) (upk.ImportRow, error) {
	var row upk.ImportRow
	var err error
	fn := FNameCodec{}
	if row.ClassPackage, err = fn.Decode(r); err != nil {
		return row, err
	}
	if row.ClassName, err = fn.Decode(r); err != nil {
		return row, err
	}
	if row.Outer, err = (IndexCodec{}).Decode(r); err != nil {
		return row, err
	}
	row.ObjectName, err = fn.Decode(r)
	return row, err
}

func (ImportCodec) Encode(w io.Writer, v upk.ImportRow) error {
	fn := FNameCodec{}
	if err := fn.Encode(w, v.ClassPackage); err != nil {
		return err
	}
	if err := fn.Encode(w, v.ClassName); err != nil {
		return err
	}
	if err := (IndexCodec{}).Encode(w, v.Outer); err != nil {
		return err
	}
	return fn.Encode(w, v.ObjectName)
}

// ExportCodec encodes one export table row
type ExportCodec struct{}

func (ExportCodec) Decode(r io.Reader) (upk.ExportRow, error) {
	var row upk.ExportRow
	var err error
	ic := IndexCodec{}
	fn := FNameCodec{}

	if row.Class, err = ic.Decode(r); err != nil {
		return row, err
	}
	if row.Super, err = ic.Decode(r); err != nil {
		return row, err
	}
	if row.Outer, err = ic.Decode(r); err != nil {
		return row, err
	}
	if row.ObjectName, err = fn.Decode(r); err != nil {
		return row, err
	}
	if row.Archetype, err = ic.Decode(r); err != nil {
		return row, err
	}
	if row.ObjectFlags, err = readU64(r); err != nil {
		return row, err
	}
	if row.SerialSize, err = readI32(r); err != nil {
		return row, err
	}
	if row.SerialOffset, err = readI32(r); err != nil {
		return row, err
	}
	if row.ExportFlags, err = readU32(r); err != nil {
		return row, err
	}
	if row.NetObjectCount, err = readI32(r); err != nil {
		return row, err
	}
	if row.Guid, err = readGuid(r); err != nil {
		return row, err
	}
	row.PackageFlags, err = readU32(r)
	return row, err
}

func (ExportCodec) Encode(w io.Writer, v upk.ExportRow) error {
	ic := IndexCodec{}
	fn := FNameCodec{}

	if err := ic.Encode(w, v.Class); err != nil {
		return err
	}
	if err := ic.Encode(w, v.Super); err != nil {
		return err
	}
	if err := ic.Encode(w, v.Outer); err != nil {
		return err
	}
	if err := fn.Encode(w, v.ObjectName); err != nil {
		return err
	}
	if err := ic.Encode(w, v.Archetype); err != nil {
		return err
	}
	if err := writeU64(w, v.ObjectFlags); err != nil {
		return err
	}
	if err := writeI32(w, v.SerialSize); err != nil {
		return err
	}
	if err := writeI32(w, v.SerialOffset); err != nil {
		return err
	}
	if err := writeU32(w, v.ExportFlags); err != nil {
		return err
	}
	if err := writeI32(w, v.NetObjectCount); err != nil {
		return err
	}
	if err := writeGuid(w, v.Guid); err != nil {
		return err
	}
	return writeU32(w, v.PackageFlags)
}

func readGuid(r io.Reader) (upk.FGuid, error) {
	var g upk.FGuid
	var err error
	if g.A, err = readU32(r); err != nil {
		return g, err
	}
	if g.B, err = readU32(r); err != nil {
		return g, err
	}
	if g.C, err = readU32(r); err != nil {
		return g, err
	}
	g.D, err = readU32(r)
	return g, err
}

func writeGuid(w io.Writer, g upk.FGuid) error {
	for _, v := range [4]uint32{g.A, g.B, g.C, g.D} {
		if err := writeU32(w, v); err != nil {
			return err
		}
	}
	return nil
}

// SummaryCodec encodes the FileSummary header
type SummaryCodec struct{}

func (SummaryCodec) Decode(r io.Reader) (upk.FileSummary, error) {
	var s upk.FileSummary
	var err error

	if s.Magic, err = readU32(r); err != nil {
		return s, err
	}
	if s.FileVersion, err = readU16(r); err != nil {
		return s, err
	}
	if s.FileLicensee, err = readU16(r); err != nil {
		return s, err
	}
	if s.TotalHeaderSize, err = readI32(r); err != nil {
		return s, err
	}
	if s.PackageName, err = readString(r); err != nil {
		return s, err
	}
	if s.PackageFlags, err = readU32(r); err != nil {
		return s, err
	}
	for _, p := range []*int32{
		&s.NameCount, &s.NameOffset,
		&s.ExportCount, &s.ExportOffset,
		&s.ImportCount, &s.ImportOffset,
		&s.DependsOffset, &s.ThumbnailOffset,
		&s.EngineVersion, &s.CookerVersion, &s.LicenseeVersion,
	} {
		if *p, err = readI32(r); err != nil {
			return s, err
		}
	}

	n, err := readI32(r)
	if err != nil {
		return s, err
	}
	if n < 0 || n > maxStringLength {
		return s, errBadCount("additional packages", n)
	}
	for i := int32(0); i < n; i++ {
		pkg, err := readString(r)
		if err != nil {
			return s, err
		}
		s.AdditionalPackagesToCook = append(s.AdditionalPackagesToCook, pkg)
	}

	n, err = readI32(r)
	if err != nil {
		return s, err
	}
	if n < 0 || n > maxStringLength {
		return s, errBadCount("texture allocations", n)
	}
	for i := int32(0); i < n; i++ {
		ta, err := readTextureAllocation(r)
		if err != nil {
			return s, err
		}
		s.TextureAllocations = append(s.TextureAllocations, ta)
	}
	return s, nil
}

func (SummaryCodec) Encode(w io.Writer, s upk.FileSummary) error {
	if err := writeU32(w, s.Magic); err != nil {
		return err
	}
	if err := writeU16(w, s.FileVersion); err != nil {
		return err
	}
	if err := writeU16(w, s.FileLicensee); err != nil {
		return err
	}
	if err := writeI32(w, s.TotalHeaderSize); err != nil {
		return err
	}
	if err := writeString(w, s.PackageName); err != nil {
		return err
	}
	if err := writeU32(w, s.PackageFlags); err != nil {
		return err
	}
	for _, v := range []int32{
		s.NameCount, s.NameOffset,
		s.ExportCount, s.ExportOffset,
		s.ImportCount, s.ImportOffset,
		s.DependsOffset, s.ThumbnailOffset,
		s.EngineVersion, s.CookerVersion, s.LicenseeVersion,
	} {
		if err := writeI32(w, v); err != nil {
			return err
		}
	}

	if err := writeI32(w, int32(len(s.AdditionalPackagesToCook))); err != nil {
		return err
	}
	for _, pkg := range s.AdditionalPackagesToCook {
		if err := writeString(w, pkg); err != nil {
			return err
		}
	}

	if err := writeI32(w, int32(len(s.TextureAllocations))); err != nil {
		return err
	}
	for _, ta := range s.TextureAllocations {
		if err := writeTextureAllocation(w, ta); err != nil {
			return err
		}
	}
	return nil
}

func readTextureAllocation(r io.Reader) (upk.TextureAllocation, error) {
	var ta upk.TextureAllocation
	var err error
	if ta.SizeX, err = readI32(r); err != nil {
		return ta, err
	}
	if ta.SizeY, err = readI32(r); err != nil {
		return ta, err
	}
	if ta.NumMips, err = readI32(r); err != nil {
		return ta, err
	}
	if ta.Format, err = readU32(r); err != nil {
		return ta, err
	}
	if ta.CreateFlags, err = readU32(r); err != nil {
		return ta, err
	}
	n, err := readI32(r)
	if err != nil {
		return ta, err
	}
	if n < 0 || n > maxStringLength {
		return ta, errBadCount("texture allocation exports", n)
	}
	for i := int32(0); i < n; i++ {
		v, err := readI32(r)
		if err != nil {
			return ta, err
		}
		ta.ExportIndices = append(ta.ExportIndices, v)
	}
	return ta, nil
}

func writeTextureAllocation(w io.Writer, ta upk.TextureAllocation) error {
	for _, v := range []int32{ta.SizeX, ta.SizeY, ta.NumMips} {
		if err := writeI32(w, v); err != nil {
			return err
		}
	}
	if err := writeU32(w, ta.Format); err != nil {
		return err
	}
	if err := writeU32(w, ta.CreateFlags); err != nil {
		return err
	}
	if err := writeI32(w, int32(len(ta.ExportIndices))); err != nil {
		return err
	}
	for _, v := range ta.ExportIndices {
		if err := writeI32(w, v); err != nil {
			return err
		}
	}
	return nil
}
