package upk

import (
	stderrors "errors"
	"testing"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
)

func TestObjectIndex_Encoding(t *testing.T) {
	cases := []struct {
		got  ObjectIndex
		want int32
	}{
		{FromExport(0), 1},
		{FromExport(7), 8},
		{FromImport(0), -1},
		{FromImport(7), -8},
		{NullIndex(), 0},
	}
	for _, tc := range cases {
		if int32(tc.got) != tc.want {
			t.Errorf("expected raw %d, got %d", tc.want, int32(tc.got))
		}
	}
}

func TestObjectIndex_Tags(t *testing.T) {
	if ObjectIndex(0).Tag() != TagNull {
		t.Error("0 should be null")
	}
	if ObjectIndex(-1).Tag() != TagImport {
		t.Error("-1 should be an import")
	}
	if ObjectIndex(1).Tag() != TagExport {
		t.Error("1 should be an export")
	}
	if !NullIndex().IsNull() || FromExport(0).IsNull() {
		t.Error("IsNull misclassified")
	}
}

func TestObjectIndex_RoundTrip(t *testing.T) {
	for k := 0; k < 16; k++ {
		e := FromExport(k)
		if e.Tag() != TagExport {
			t.Fatalf("FromExport(%d) has tag %v", k, e.Tag())
		}
		back, err := e.ExportIndex()
		if err != nil || back != k {
			t.Fatalf("ExportIndex(FromExport(%d)) = %d, %v", k, back, err)
		}

		i := FromImport(k)
		if i.Tag() != TagImport {
			t.Fatalf("FromImport(%d) has tag %v", k, i.Tag())
		}
		back, err = i.ImportIndex()
		if err != nil || back != k {
			t.Fatalf("ImportIndex(FromImport(%d)) = %d, %v", k, back, err)
		}
	}
}

func TestObjectIndex_WrongTag(t *testing.T) {
	wrongTag := &uerrors.Error{Phase: uerrors.PhaseResolve, Kind: uerrors.KindWrongIndexTag}

	if _, err := FromImport(3).ExportIndex(); !stderrors.Is(err, wrongTag) {
		t.Errorf("ExportIndex on import: %v", err)
	}
	if _, err := FromExport(3).ImportIndex(); !stderrors.Is(err, wrongTag) {
		t.Errorf("ImportIndex on export: %v", err)
	}
	if _, err := NullIndex().ExportIndex(); !stderrors.Is(err, wrongTag) {
		t.Errorf("ExportIndex on null: %v", err)
	}
}
