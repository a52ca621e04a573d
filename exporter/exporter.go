package exporter

import (
	"bytes"
	"io"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

// State tracks the exporter's linear pipeline
type State int

const (
	StateBuilt State = iota
	StateFiltered
	StateReindexed
	StateHeaderWritten
	StateTablesWritten
	StateBodiesWritten
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "Built"
	case StateFiltered:
		return "Filtered"
	case StateReindexed:
		return "Reindexed"
	case StateHeaderWritten:
		return "HeaderWritten"
	case StateTablesWritten:
		return "TablesWritten"
	case StateBodiesWritten:
		return "BodiesWritten"
	case StateFinalized:
		return "Finalized"
	default:
		return "unknown"
	}
}

// Export-time row constants. Every emitted container gets the canonical
// engine version and package flags; object flags depend on the variant.
const (
	packageObjectFlags  uint64 = 0x0007_0004_0000_0000
	resourceObjectFlags uint64 = 0x000F_0004_0000_0000
	defaultObjectFlags  uint64 = 0x000F_0004_0000_0400

	hasStackFlag uint64 = 0x0000_0000_0200_0000

	exportEngineVersion int32  = 12791
	exportPackageFlags  uint32 = 1
)

type importEntry struct {
	row      upk.ImportRow
	srcIndex int
	obj      upk.Object
}

type exportEntry struct {
	row      upk.ExportRow
	srcIndex int
	obj      upk.Object
}

// Exporter builds and writes one exported container. The source container
// must be fully loaded; the output stream must be seekable for the final
// rewrite pass.
type Exporter struct {
	src      *upk.Container
	out      io.WriteSeeker
	codecs   upk.Codecs
	registry *upk.CodecRegistry

	// Augment, when set, runs after filtering and before reindexing. It is
	// the hook for inserting synthetic rows (dummy materials and the like).
	Augment func(e *Exporter) error

	state   State
	summary upk.FileSummary
	names   *upk.NameTable
	imports []importEntry
	exports []exportEntry

	nameOffset   int64
	importOffset int64
	exportOffset int64
}

// New clones the source's header and tables through their codecs and
// returns an exporter in the Built state. registry supplies per-class body
// codecs for the body pass; nil means identity bodies.
func New(src *upk.Container, out io.WriteSeeker, codecs upk.Codecs, registry *upk.CodecRegistry) (*Exporter, error) {
	if registry == nil {
		registry = upk.NewCodecRegistry()
	}
	e := &Exporter{
		src:      src,
		out:      out,
		codecs:   codecs,
		registry: registry,
		state:    StateBuilt,
	}
	if err := e.clone(); err != nil {
		return nil, err
	}
	return e, nil
}

// clone round-trips header and table rows through their encoders so the
// working copy is decoupled from the source.
func (e *Exporter) clone() error {
	var buf bytes.Buffer
	if err := e.codecs.Summary.Encode(&buf, e.src.Summary); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	summary, err := e.codecs.Summary.Decode(&buf)
	if err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.summary = summary

	entries := make([]upk.NameEntry, 0, e.src.Names.Len())
	for _, row := range e.src.Names.Entries() {
		buf.Reset()
		if err := e.codecs.Name.Encode(&buf, row); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		clone, err := e.codecs.Name.Decode(&buf)
		if err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		entries = append(entries, clone)
	}
	e.names = upk.NameTableOf(entries)

	for i := range e.src.Imports {
		buf.Reset()
		if err := e.codecs.Import.Encode(&buf, e.src.Imports[i]); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		row, err := e.codecs.Import.Decode(&buf)
		if err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		e.imports = append(e.imports, importEntry{
			row:      row,
			srcIndex: i,
			obj:      e.src.Object(upk.FromImport(i)),
		})
	}
	for i := range e.src.Exports {
		buf.Reset()
		if err := e.codecs.Export.Encode(&buf, e.src.Exports[i]); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		row, err := e.codecs.Export.Decode(&buf)
		if err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		e.exports = append(e.exports, exportEntry{
			row:      row,
			srcIndex: i,
			obj:      e.src.Object(upk.FromExport(i)),
		})
	}
	return nil
}

// State returns the pipeline position
func (e *Exporter) State() State { return e.state }

// Names returns the working name table; augmentation hooks may intern
// additional names through it.
func (e *Exporter) Names() *upk.NameTable { return e.names }

// ImportRows returns the working import rows in table order
func (e *Exporter) ImportRows() []upk.ImportRow {
	out := make([]upk.ImportRow, len(e.imports))
	for i, entry := range e.imports {
		out[i] = entry.row
	}
	return out
}

// ExportRows returns the working export rows in table order
func (e *Exporter) ExportRows() []upk.ExportRow {
	out := make([]upk.ExportRow, len(e.exports))
	for i, entry := range e.exports {
		out[i] = entry.row
	}
	return out
}

// AppendImport adds a synthetic import row bound to obj. Intended for
// augmentation hooks; synthetic rows take part in reindexing like any
// other row.
func (e *Exporter) AppendImport(row upk.ImportRow, obj upk.Object) {
	e.imports = append(e.imports, importEntry{row: row, srcIndex: -1, obj: obj})
}

// AppendExport adds a synthetic export row bound to obj
func (e *Exporter) AppendExport(row upk.ExportRow, obj upk.Object) {
	e.exports = append(e.exports, exportEntry{row: row, srcIndex: -1, obj: obj})
}

// FindObjectIndex returns an object's index in the working tables:
// exports first (positive), then imports (negative), else null.
func (e *Exporter) FindObjectIndex(obj upk.Object) upk.ObjectIndex {
	if obj == nil {
		return upk.NullIndex()
	}
	for i := range e.exports {
		if e.exports[i].obj == obj {
			return upk.FromExport(i)
		}
	}
	for i := range e.imports {
		if e.imports[i].obj == obj {
			return upk.FromImport(i)
		}
	}
	return upk.NullIndex()
}

// Run drives the whole pipeline: Filter, Reindex, Write
func (e *Exporter) Run() error {
	if err := e.Filter(); err != nil {
		return err
	}
	if err := e.Reindex(); err != nil {
		return err
	}
	return e.Write()
}
