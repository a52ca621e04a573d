package exporter_test

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"testing"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/exporter"
	"github.com/JetF0x/RL-UPKSuite/internal/upktest"
	"github.com/JetF0x/RL-UPKSuite/loader"
	"github.com/JetF0x/RL-UPKSuite/upk"
	"github.com/JetF0x/RL-UPKSuite/wire"
)

// memSeeker is an in-memory seekable output stream
type memSeeker struct {
	buf []byte
	pos int64
}

func (m *memSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}
	if m.pos < 0 {
		return 0, fmt.Errorf("seek before start")
	}
	return m.pos, nil
}

type mapSource map[string][]byte

func (m mapSource) Open(name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// mapFixture builds and loads the S5 source container: a package, a world,
// a level inside the world, and a mesh at the container root. Classes come
// in as native imports.
func mapFixture(t *testing.T) *upk.Container {
	t.Helper()

	names := upktest.Names(
		"None", "S", "Core", "Class", "Package", "World", "Level", "StaticMesh",
		"MyPackage", "TheWorld", "TheLevel", "Mesh",
	)
	imp := func(object string) upk.ImportRow {
		return upk.ImportRow{
			ClassPackage: upktest.N(names, "Core"),
			ClassName:    upktest.N(names, "Class"),
			Outer:        upk.FromImport(0),
			ObjectName:   upktest.N(names, object),
		}
	}
	src := mapSource{
		"S": upktest.Fixture{
			Name:  "S",
			Names: names,
			Imports: []upk.ImportRow{
				{
					ClassPackage: upktest.N(names, "Core"),
					ClassName:    upktest.N(names, "Package"),
					ObjectName:   upktest.N(names, "S"),
				},
				imp("Package"),
				imp("World"),
				imp("Level"),
				imp("StaticMesh"),
			},
			Exports: []upk.ExportRow{
				{ObjectName: upktest.N(names, "MyPackage"), Class: upk.FromImport(1)},
				{ObjectName: upktest.N(names, "TheWorld"), Class: upk.FromImport(2)},
				{ObjectName: upktest.N(names, "TheLevel"), Class: upk.FromImport(3), Outer: upk.FromExport(1)},
				{ObjectName: upktest.N(names, "Mesh"), Class: upk.FromImport(4)},
			},
			Bodies: [][]byte{
				[]byte("PKG!"),
				[]byte("WORLD"),
				[]byte("LEVEL!"),
				[]byte("MESHDA"),
			},
		}.Encode(),
	}

	ld := loader.New(loader.NewCache(), src, wire.DefaultCodecs())
	ld.OnDecode = func(c *upk.Container) {
		for _, cls := range []string{"Package", "World", "Level", "StaticMesh"} {
			c.RegisterNativeClass(cls)
		}
	}
	c, err := ld.Load("S")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func exportContainer(t *testing.T, src *upk.Container) (*exporter.Exporter, []byte) {
	t.Helper()
	out := &memSeeker{}
	exp, err := exporter.New(src, out, wire.DefaultCodecs(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Run(); err != nil {
		t.Fatal(err)
	}
	return exp, out.buf
}

func decodeOutput(t *testing.T, data []byte) *upk.Container {
	t.Helper()
	c, err := upk.Decode(data, "S", wire.DefaultCodecs())
	if err != nil {
		t.Fatalf("exported container does not decode: %v", err)
	}
	return c
}

func exportNames(t *testing.T, c *upk.Container) []string {
	t.Helper()
	var out []string
	for i := range c.Exports {
		full, err := c.FullName(upk.FromExport(i))
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, full)
	}
	sort.Strings(out)
	return out
}

func TestExport_WorldSubtreeDropped(t *testing.T) {
	src := mapFixture(t)
	_, data := exportContainer(t, src)
	got := decodeOutput(t, data)

	names := exportNames(t, got)
	want := []string{"Mesh", "MyPackage"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("exports after filter: %v", names)
	}

	var meshRow, pkgRow *upk.ExportRow
	for i := range got.Exports {
		switch s, _ := got.NameString(got.Exports[i].ObjectName); s {
		case "Mesh":
			meshRow = &got.Exports[i]
		case "MyPackage":
			pkgRow = &got.Exports[i]
		}
	}

	if meshRow.ObjectFlags != 0x000F_0004_0000_0000 {
		t.Errorf("mesh object flags %#016x", meshRow.ObjectFlags)
	}
	if meshRow.PackageFlags != 0 {
		t.Errorf("mesh package flags %d", meshRow.PackageFlags)
	}
	if pkgRow.ObjectFlags != 0x0007_0004_0000_0000 {
		t.Errorf("package object flags %#016x", pkgRow.ObjectFlags)
	}
	if pkgRow.PackageFlags != 1 {
		t.Errorf("package package flags %d", pkgRow.PackageFlags)
	}
}

func TestExport_HeaderRewrite(t *testing.T) {
	src := mapFixture(t)
	_, data := exportContainer(t, src)
	got := decodeOutput(t, data)

	s := got.Summary
	if s.EngineVersion != 12791 {
		t.Errorf("engine version %d", s.EngineVersion)
	}
	if s.PackageFlags != 1 {
		t.Errorf("package flags %d", s.PackageFlags)
	}
	if s.CookerVersion != 0 || s.LicenseeVersion != 0 {
		t.Errorf("cooker/licensee not zeroed: %d/%d", s.CookerVersion, s.LicenseeVersion)
	}
	if s.ThumbnailOffset != 0 {
		t.Errorf("thumbnail offset %d", s.ThumbnailOffset)
	}
	if len(s.AdditionalPackagesToCook) != 0 || len(s.TextureAllocations) != 0 {
		t.Error("cook and texture lists not cleared")
	}
}

func TestExport_TwoPassLayout(t *testing.T) {
	src := mapFixture(t)
	_, data := exportContainer(t, src)
	got := decodeOutput(t, data)
	s := got.Summary

	if s.ExportCount != 2 {
		t.Fatalf("export count %d", s.ExportCount)
	}
	if s.DependsOffset <= s.ExportOffset {
		t.Errorf("depends table at %d, exports at %d", s.DependsOffset, s.ExportOffset)
	}
	if want := s.DependsOffset + 4*s.ExportCount; s.TotalHeaderSize != want {
		t.Errorf("total header size %d, want %d", s.TotalHeaderSize, want)
	}

	// Body positions partition [TotalHeaderSize, len(data)).
	type span struct{ lo, hi int32 }
	var spans []span
	for i := range got.Exports {
		row := &got.Exports[i]
		spans = append(spans, span{row.SerialOffset, row.SerialOffset + row.SerialSize})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })

	if spans[0].lo != s.TotalHeaderSize {
		t.Errorf("first body at %d, header ends at %d", spans[0].lo, s.TotalHeaderSize)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].lo != spans[i-1].hi {
			t.Errorf("bodies not contiguous: %v", spans)
		}
	}
	if spans[len(spans)-1].hi != int32(len(data)) {
		t.Errorf("last body ends at %d, stream has %d bytes", spans[len(spans)-1].hi, len(data))
	}

	// Identity bodies survive verbatim.
	for i := range got.Exports {
		row := &got.Exports[i]
		body, err := got.BodyBytes(row)
		if err != nil {
			t.Fatal(err)
		}
		switch s, _ := got.NameString(row.ObjectName); s {
		case "MyPackage":
			if string(body) != "PKG!" {
				t.Errorf("package body %q", body)
			}
		case "Mesh":
			if string(body) != "MESHDA" {
				t.Errorf("mesh body %q", body)
			}
		}
	}
}

func TestExport_ReindexConsistency(t *testing.T) {
	src := mapFixture(t)
	exp, data := exportContainer(t, src)
	got := decodeOutput(t, data)

	// The class references of the surviving exports must agree with
	// FindObjectIndex over the source objects they came from.
	for i := range got.Exports {
		row := &got.Exports[i]
		name, _ := got.NameString(row.ObjectName)
		var wantClass upk.Object
		switch name {
		case "MyPackage":
			wantClass = src.Object(upk.FromImport(1))
		case "Mesh":
			wantClass = src.Object(upk.FromImport(4))
		}
		if row.Class != exp.FindObjectIndex(wantClass) {
			t.Errorf("%s class ref %s disagrees with FindObjectIndex %s",
				name, row.Class, exp.FindObjectIndex(wantClass))
		}
		if row.Class.Tag() != upk.TagImport {
			t.Errorf("%s class should resolve to an import, got %s", name, row.Class)
		}
		k, _ := row.Class.ImportIndex()
		clsName, _ := got.NameString(got.Imports[k].ObjectName)
		switch name {
		case "MyPackage":
			if clsName != "Package" {
				t.Errorf("package class import named %q", clsName)
			}
		case "Mesh":
			if clsName != "StaticMesh" {
				t.Errorf("mesh class import named %q", clsName)
			}
		}
	}

	// Round trip preserves full names for everything the filter kept.
	for i := range got.Exports {
		full, err := got.FullName(upk.FromExport(i))
		if err != nil {
			t.Fatal(err)
		}
		if src.FindObjectByFullName(full) == nil {
			t.Errorf("exported %q has no counterpart in the source", full)
		}
	}
}

func TestExport_InternalImportDropped(t *testing.T) {
	names := upktest.Names("None", "A", "Core", "Class", "Package", "WidgetClass", "Widget")
	src := mapSource{
		"A": upktest.Fixture{
			Name:  "A",
			Names: names,
			Imports: []upk.ImportRow{
				{
					ClassPackage: upktest.N(names, "Core"),
					ClassName:    upktest.N(names, "Package"),
					ObjectName:   upktest.N(names, "A"),
				},
				{
					ClassPackage: upktest.N(names, "Core"),
					ClassName:    upktest.N(names, "Class"),
					Outer:        upk.FromImport(0),
					ObjectName:   upktest.N(names, "Widget"),
				},
			},
			Exports: []upk.ExportRow{
				{ObjectName: upktest.N(names, "WidgetClass")},
				{ObjectName: upktest.N(names, "Widget"), Class: upk.FromExport(0)},
			},
			Bodies: [][]byte{nil, []byte("WIDGET")},
		}.Encode(),
	}

	ld := loader.New(loader.NewCache(), src, wire.DefaultCodecs())
	ld.OnDecode = func(c *upk.Container) {
		c.RegisterNativeClass("Widget")
	}
	c, err := ld.Load("A")
	if err != nil {
		t.Fatal(err)
	}

	exp, err := exporter.New(c, &memSeeker{}, wire.DefaultCodecs(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Filter(); err != nil {
		t.Fatal(err)
	}

	// The Widget import resolved to an export of this very container, so
	// the filter must drop it and keep only the top-level self reference.
	rows := exp.ImportRows()
	if len(rows) != 1 {
		t.Fatalf("kept %d imports, want 1", len(rows))
	}
	if s, _ := c.NameString(rows[0].ObjectName); s != "A" {
		t.Errorf("surviving import named %q", s)
	}
}

func TestExport_StateMachine(t *testing.T) {
	src := mapFixture(t)
	exp, err := exporter.New(src, &memSeeker{}, wire.DefaultCodecs(), nil)
	if err != nil {
		t.Fatal(err)
	}

	invalid := &uerrors.Error{Phase: uerrors.PhaseExport, Kind: uerrors.KindInvalidState}

	if err := exp.Write(); !stderrors.Is(err, invalid) {
		t.Errorf("Write before Filter: %v", err)
	}
	if err := exp.Reindex(); !stderrors.Is(err, invalid) {
		t.Errorf("Reindex before Filter: %v", err)
	}
	if err := exp.Filter(); err != nil {
		t.Fatal(err)
	}
	if err := exp.Filter(); !stderrors.Is(err, invalid) {
		t.Errorf("second Filter: %v", err)
	}
	if err := exp.Reindex(); err != nil {
		t.Fatal(err)
	}
	if err := exp.Write(); err != nil {
		t.Fatal(err)
	}
	if exp.State() != exporter.StateFinalized {
		t.Errorf("final state %v", exp.State())
	}
}

func TestExport_AugmentHook(t *testing.T) {
	src := mapFixture(t)
	out := &memSeeker{}
	exp, err := exporter.New(src, out, wire.DefaultCodecs(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	exp.Augment = func(e *exporter.Exporter) error {
		ran = true
		// Augmentation runs after filtering: the world is already gone.
		for _, row := range e.ExportRows() {
			if s, _ := src.NameString(row.ObjectName); s == "TheWorld" {
				t.Error("augment hook observed the world export")
			}
		}
		e.Names().Intern("DummyMaterial")
		return nil
	}
	if err := exp.Run(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("augment hook did not run")
	}

	got := decodeOutput(t, out.buf)
	if _, ok := got.Names.Find("DummyMaterial"); !ok {
		t.Error("interned name missing from output")
	}
}
