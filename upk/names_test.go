package upk

import "testing"

func TestNameTable_InternIdempotent(t *testing.T) {
	table := NewNameTable()

	first := table.Intern("Engine")
	second := table.Intern("Engine")
	if first != second {
		t.Errorf("Intern not idempotent: %v vs %v", first, second)
	}
	if first.Number != 0 {
		t.Errorf("Intern should return instance 0, got %d", first.Number)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 row, got %d", table.Len())
	}

	other := table.Intern("Core")
	if other.Index == first.Index {
		t.Error("distinct strings share an index")
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", table.Len())
	}
}

func TestNameTable_Lookup(t *testing.T) {
	table := NameTableOf([]NameEntry{{Name: "None"}, {Name: "Core", Flags: 0x7}})

	s, ok := table.Lookup(1)
	if !ok || s != "Core" {
		t.Errorf("Lookup(1) = %q, %v", s, ok)
	}
	if _, ok := table.Lookup(5); ok {
		t.Error("Lookup out of range should fail")
	}
	if _, ok := table.Lookup(-1); ok {
		t.Error("Lookup of negative index should fail")
	}

	n, ok := table.Find("None")
	if !ok || n.Index != 0 {
		t.Errorf("Find(None) = %v, %v", n, ok)
	}
	if table.Entries()[1].Flags != 0x7 {
		t.Error("flags not carried through")
	}
}
