// Package exporter re-emits a filtered subset of a loaded container as a
// new container.
//
// The pipeline is linear and non-reentrant: clone the header and tables by
// round-tripping them through their codecs, filter rows (empty imports,
// unresolvable imports, zero-size exports, the world subtree, internal
// imports), rewrite header and flag fields for export, reassign every
// reference to its index in the filtered tables, then write in two passes.
// The first pass lays out header, names, imports, exports, and a zeroed
// depends table; the body pass appends each export's body and records its
// final offset and size; a seek-back rewrite patches the export table and
// header. Body serializers write through a sink that re-emits ObjectIndex
// and FName values against the new tables, so references inside bodies
// stay consistent with the rewritten rows.
package exporter
