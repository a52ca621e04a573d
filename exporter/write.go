package exporter

import (
	"io"

	"go.uber.org/zap"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

func (e *Exporter) tell() (int64, error) {
	return e.out.Seek(0, io.SeekCurrent)
}

// Write lays the container out in two passes. The first pass writes the
// header with best-estimate offsets, then names, imports, exports, and a
// zeroed depends table; the body pass appends each export's body and
// records final offsets; the rewrite pass seeks back to patch the export
// table and header. Positions increase monotonically until that final
// seek-back.
func (e *Exporter) Write() error {
	if e.state != StateReindexed {
		return uerrors.InvalidState("Write", e.state.String())
	}

	if err := e.writeHeaderAndTables(); err != nil {
		return err
	}
	if err := e.writeBodies(); err != nil {
		return err
	}
	return e.finalize()
}

func (e *Exporter) writeHeaderAndTables() error {
	if _, err := e.out.Seek(0, io.SeekStart); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	if err := e.codecs.Summary.Encode(e.out, e.summary); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.state = StateHeaderWritten

	pos, err := e.tell()
	if err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.nameOffset = pos
	for _, row := range e.names.Entries() {
		if err := e.codecs.Name.Encode(e.out, row); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
	}
	e.summary.NameCount = int32(e.names.Len())
	e.summary.NameOffset = int32(e.nameOffset)

	if pos, err = e.tell(); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.importOffset = pos
	for i := range e.imports {
		if err := e.codecs.Import.Encode(e.out, e.imports[i].row); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
	}
	e.summary.ImportCount = int32(len(e.imports))
	e.summary.ImportOffset = int32(e.importOffset)

	if pos, err = e.tell(); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.exportOffset = pos
	for i := range e.exports {
		if err := e.codecs.Export.Encode(e.out, e.exports[i].row); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
	}
	e.summary.ExportCount = int32(len(e.exports))
	e.summary.ExportOffset = int32(e.exportOffset)

	// Dummy depends table: one zeroed 32-bit word per export.
	if pos, err = e.tell(); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.summary.DependsOffset = int32(pos)
	zero := make([]byte, 4*len(e.exports))
	if _, err := e.out.Write(zero); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}

	e.summary.ThumbnailOffset = 0

	if pos, err = e.tell(); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	e.summary.TotalHeaderSize = int32(pos)

	e.state = StateTablesWritten
	return nil
}

func (e *Exporter) writeBodies() error {
	for i := range e.exports {
		entry := &e.exports[i]

		if entry.obj == nil && entry.srcIndex >= 0 {
			obj, err := e.src.CreateObject(upk.FromExport(entry.srcIndex))
			if err != nil {
				return err
			}
			entry.obj = obj
		}
		if entry.obj == nil {
			name, _ := e.names.Lookup(entry.row.ObjectName.Index)
			return uerrors.NotMaterialized(e.src.Name, name)
		}

		// Script objects keep their live flags rather than the rewritten ones.
		if entry.srcIndex >= 0 {
			if srcRow := e.src.Export(entry.srcIndex); srcRow != nil && srcRow.ObjectFlags&hasStackFlag != 0 {
				entry.row.ObjectFlags = entry.obj.ObjectFlags()
			}
		}

		offset, err := e.tell()
		if err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}

		codec := e.registry.Lookup(entry.obj.Class())
		sink := &bodySink{e: e}
		if err := codec.EncodeBody(sink, entry.obj); err != nil {
			return uerrors.New(uerrors.PhaseExport, uerrors.KindIO).
				Container(e.src.Name).
				Object(entry.obj.FullName()).
				Cause(err).
				Detail("encode body").
				Build()
		}

		end, err := e.tell()
		if err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
		entry.row.SerialOffset = int32(offset)
		entry.row.SerialSize = int32(end - offset)
	}

	e.state = StateBodiesWritten
	return nil
}

// finalize seeks back to rewrite the export table with final offsets and
// sizes, then the header with final counts and offsets.
func (e *Exporter) finalize() error {
	if _, err := e.out.Seek(e.exportOffset, io.SeekStart); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	for i := range e.exports {
		if err := e.codecs.Export.Encode(e.out, e.exports[i].row); err != nil {
			return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
		}
	}
	if _, err := e.out.Seek(0, io.SeekStart); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}
	if err := e.codecs.Summary.Encode(e.out, e.summary); err != nil {
		return uerrors.IO(uerrors.PhaseExport, e.src.Name, err)
	}

	e.state = StateFinalized
	Logger().Info("container exported",
		zap.String("container", e.src.Name),
		zap.Int32("header", e.summary.TotalHeaderSize),
		zap.Int("exports", len(e.exports)),
		zap.Int("imports", len(e.imports)))
	return nil
}

// bodySink re-emits references and names through the exporter's tables so
// bodies point at the new indices.
type bodySink struct {
	e *Exporter
}

func (s *bodySink) Write(p []byte) (int, error) {
	return s.e.out.Write(p)
}

func (s *bodySink) WriteIndex(old upk.ObjectIndex) error {
	var obj upk.Object
	if !old.IsNull() {
		obj = s.e.src.Object(old)
	}
	return s.e.codecs.Index.Encode(s.e.out, s.e.FindObjectIndex(obj))
}

func (s *bodySink) WriteName(n upk.FName) error {
	str, ok := s.e.src.Names.Lookup(n.Index)
	if !ok {
		return uerrors.BadNameReference(s.e.src.Name, int32(n.Index), s.e.src.Names.Len())
	}
	fn := s.e.names.Intern(str)
	fn.Number = n.Number
	return s.e.codecs.FName.Encode(s.e.out, fn)
}
