// Package upk holds the in-memory data model for UPK asset containers.
//
// A Container owns a FileSummary header, a name table, an import table, an
// export table, and the objects materialized from the export bodies. Rows
// reference each other through tagged signed ObjectIndex values: positive
// values select export rows, negative values select import rows, zero is
// null. Names are interned FName pairs resolved through the owning
// container's name table.
//
// Decoding reads the header and tables and leaves object bodies untouched;
// materialization happens later, one object at a time, in the dependency
// order computed by the loader package.
package upk
