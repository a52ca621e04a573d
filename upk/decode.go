package upk

import (
	"fmt"

	"go.uber.org/zap"

	upksuite "github.com/JetF0x/RL-UPKSuite"
	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
)

// Codecs bundles the row codecs a container decode or export consumes.
// The wire package provides the default little-endian set.
type Codecs struct {
	Summary upksuite.RowCodec[FileSummary]
	Name    upksuite.RowCodec[NameEntry]
	Import  upksuite.RowCodec[ImportRow]
	Export  upksuite.RowCodec[ExportRow]
	Index   upksuite.RowCodec[ObjectIndex]
	FName   upksuite.RowCodec[FName]
}

// decodeTable reads one table's rows through a pooled reader. An empty
// table is skipped outright; its offset carries no meaning and is never
// dereferenced.
func decodeTable[T any](codec upksuite.RowCodec[T], data []byte, offset, count int32) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	r := getReader(data[offset:])
	defer putReader(r)

	rows := make([]T, 0, count)
	for i := int32(0); i < count; i++ {
		row, err := codec.Decode(r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Decode parses a container's header and tables from its plaintext byte
// stream. Object bodies are left unread; they are sliced out of data when
// the loader materializes each export.
func Decode(data []byte, name string, codecs Codecs) (*Container, error) {
	r := getReader(data)
	summary, err := codecs.Summary.Decode(r)
	putReader(r)
	if err != nil {
		return nil, uerrors.New(uerrors.PhaseDecode, uerrors.KindMalformedHeader).
			Container(name).
			Cause(err).
			Build()
	}
	if summary.Magic != Magic {
		return nil, uerrors.MalformedHeader(name,
			fmt.Sprintf("bad magic %#08x", summary.Magic))
	}

	if err := checkTableBounds(name, &summary, len(data)); err != nil {
		return nil, err
	}

	entries, err := decodeTable(codecs.Name, data, summary.NameOffset, summary.NameCount)
	if err != nil {
		return nil, uerrors.TruncatedTable(name, "name", err)
	}
	names := NameTableOf(entries)

	imports, err := decodeTable(codecs.Import, data, summary.ImportOffset, summary.ImportCount)
	if err != nil {
		return nil, uerrors.TruncatedTable(name, "import", err)
	}

	exports, err := decodeTable(codecs.Export, data, summary.ExportOffset, summary.ExportCount)
	if err != nil {
		return nil, uerrors.TruncatedTable(name, "export", err)
	}

	if err := checkNameRefs(name, names, imports, exports); err != nil {
		return nil, err
	}

	c := NewContainer(name, summary, names, imports, exports, data)
	Logger().Debug("decoded container",
		zap.String("container", name),
		zap.Int("names", names.Len()),
		zap.Int("imports", len(imports)),
		zap.Int("exports", len(exports)))
	return c, nil
}

func checkTableBounds(name string, s *FileSummary, size int) error {
	tables := []struct {
		what   string
		offset int32
		count  int32
	}{
		{"name", s.NameOffset, s.NameCount},
		{"import", s.ImportOffset, s.ImportCount},
		{"export", s.ExportOffset, s.ExportCount},
	}
	for _, t := range tables {
		if t.count < 0 {
			return uerrors.MalformedHeader(name,
				fmt.Sprintf("negative %s count %d", t.what, t.count))
		}
		if t.count == 0 {
			// An empty table is never dereferenced; its offset carries
			// through verbatim.
			continue
		}
		if t.offset < 0 || int(t.offset) >= size {
			return uerrors.MalformedHeader(name,
				fmt.Sprintf("%s table offset %d outside stream of %d bytes", t.what, t.offset, size))
		}
	}
	return nil
}

func checkNameRefs(name string, names *NameTable, imports []ImportRow, exports []ExportRow) error {
	check := func(n FName) error {
		if _, ok := names.Lookup(n.Index); !ok {
			return uerrors.BadNameReference(name, int32(n.Index), names.Len())
		}
		return nil
	}
	for i := range imports {
		row := &imports[i]
		for _, n := range []FName{row.ClassPackage, row.ClassName, row.ObjectName} {
			if err := check(n); err != nil {
				return err
			}
		}
	}
	for i := range exports {
		if err := check(exports[i].ObjectName); err != nil {
			return err
		}
	}
	return nil
}
