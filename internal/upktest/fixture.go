// Package upktest builds in-memory container images for tests.
//
// The builder performs the same layout the exporter does, in miniature:
// measure the header, place names, imports, exports, a zeroed depends
// table, then the bodies, and patch the summary's counts and offsets.
package upktest

import (
	"bytes"
	"fmt"

	"github.com/JetF0x/RL-UPKSuite/upk"
	"github.com/JetF0x/RL-UPKSuite/wire"
)

// Fixture describes one container to encode
type Fixture struct {
	Name    string
	Names   []upk.NameEntry
	Imports []upk.ImportRow
	Exports []upk.ExportRow
	Bodies  [][]byte
}

// Names builds a name entry list
func Names(ss ...string) []upk.NameEntry {
	out := make([]upk.NameEntry, len(ss))
	for i, s := range ss {
		out[i] = upk.NameEntry{Name: s}
	}
	return out
}

// N returns the FName of a string in the entry list, panicking on a typo
func N(entries []upk.NameEntry, s string) upk.FName {
	for i, e := range entries {
		if e.Name == s {
			return upk.FName{Index: upk.NameIndex(i)}
		}
	}
	panic(fmt.Sprintf("fixture name %q not in table", s))
}

// Encode lays the fixture out as container bytes
func (f Fixture) Encode() []byte {
	codecs := wire.DefaultCodecs()

	summary := upk.FileSummary{
		Magic:        upk.Magic,
		FileVersion:  868,
		FileLicensee: 32,
		PackageName:  f.Name,
	}

	// Summary size is independent of the numeric fields patched below.
	var headBuf bytes.Buffer
	must(codecs.Summary.Encode(&headBuf, summary))
	headerSize := headBuf.Len()

	var nameBuf bytes.Buffer
	for _, e := range f.Names {
		must(codecs.Name.Encode(&nameBuf, e))
	}
	var impBuf bytes.Buffer
	for _, row := range f.Imports {
		must(codecs.Import.Encode(&impBuf, row))
	}
	var expMeasure bytes.Buffer
	for _, row := range f.Exports {
		must(codecs.Export.Encode(&expMeasure, row))
	}

	nameOff := headerSize
	impOff := nameOff + nameBuf.Len()
	expOff := impOff + impBuf.Len()
	dependsOff := expOff + expMeasure.Len()
	bodyStart := dependsOff + 4*len(f.Exports)

	rows := make([]upk.ExportRow, len(f.Exports))
	copy(rows, f.Exports)
	off := bodyStart
	for i := range rows {
		var body []byte
		if i < len(f.Bodies) {
			body = f.Bodies[i]
		}
		if len(body) > 0 {
			rows[i].SerialOffset = int32(off)
			rows[i].SerialSize = int32(len(body))
			off += len(body)
		}
	}

	summary.NameCount = int32(len(f.Names))
	summary.NameOffset = int32(nameOff)
	summary.ImportCount = int32(len(f.Imports))
	summary.ImportOffset = int32(impOff)
	summary.ExportCount = int32(len(f.Exports))
	summary.ExportOffset = int32(expOff)
	summary.DependsOffset = int32(dependsOff)
	summary.TotalHeaderSize = int32(bodyStart)

	var out bytes.Buffer
	must(codecs.Summary.Encode(&out, summary))
	out.Write(nameBuf.Bytes())
	out.Write(impBuf.Bytes())
	for _, row := range rows {
		must(codecs.Export.Encode(&out, row))
	}
	out.Write(make([]byte, 4*len(f.Exports)))
	for i := range rows {
		if i < len(f.Bodies) {
			out.Write(f.Bodies[i])
		}
	}
	return out.Bytes()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
