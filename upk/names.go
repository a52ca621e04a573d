package upk

// NameEntry is one name table row: the string plus a flags word carried
// through verbatim.
type NameEntry struct {
	Name  string
	Flags uint64
}

// NameTable is the ordered, append-only name storage of one container.
// Rows are never removed; Intern is idempotent.
type NameTable struct {
	entries []NameEntry
	byName  map[string]NameIndex
}

// NewNameTable returns an empty table
func NewNameTable() *NameTable {
	return &NameTable{byName: make(map[string]NameIndex)}
}

// NameTableOf builds a table over decoded rows. Later duplicates lose to
// the first occurrence for lookup purposes, matching the decode order.
func NameTableOf(entries []NameEntry) *NameTable {
	t := &NameTable{
		entries: entries,
		byName:  make(map[string]NameIndex, len(entries)),
	}
	for i, e := range entries {
		if _, ok := t.byName[e.Name]; !ok {
			t.byName[e.Name] = NameIndex(i)
		}
	}
	return t
}

// Intern appends the string if absent and returns its FName with
// instance 0.
func (t *NameTable) Intern(s string) FName {
	if idx, ok := t.byName[s]; ok {
		return FName{Index: idx}
	}
	idx := NameIndex(len(t.entries))
	t.entries = append(t.entries, NameEntry{Name: s})
	t.byName[s] = idx
	return FName{Index: idx}
}

// Lookup resolves a name index to its string
func (t *NameTable) Lookup(i NameIndex) (string, bool) {
	if i < 0 || int(i) >= len(t.entries) {
		return "", false
	}
	return t.entries[i].Name, true
}

// Find returns the FName of an already-interned string
func (t *NameTable) Find(s string) (FName, bool) {
	idx, ok := t.byName[s]
	return FName{Index: idx}, ok
}

// Len returns the row count
func (t *NameTable) Len() int { return len(t.entries) }

// Entries exposes the backing rows in table order
func (t *NameTable) Entries() []NameEntry { return t.entries }
