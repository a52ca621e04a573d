// Package upksuite loads and re-exports UPK asset containers.
//
// A container is a single file holding a FileSummary header, a name table,
// an import table, an export table, and a stream of serialized object
// bodies. Objects reference each other through tagged signed ObjectIndex
// values; an import row lets a reference cross into another container. The
// hard problem is not parsing one file but resolving the graph of
// inter-container references into a valid load order, and the symmetric
// problem of re-emitting a consistent subset of that graph as a new
// container.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	upksuite/        Root package with the RowCodec contract
//	├── upk/         Container data model, object variants, decoding
//	├── wire/        Default little-endian row codecs
//	├── loader/      Container cache, dependency resolver, load orchestration
//	├── exporter/    Filtered, reindexed two-pass container export
//	├── manifest/    Container name to path mapping, compressed sources
//	├── errors/      Structured error types for diagnostics
//	└── cmd/upkcli/  Command line front-end
//
// # Quick Start
//
// Load a container and everything it references:
//
//	man, err := manifest.Load("containers.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache := loader.NewCache()
//	ld := loader.New(cache, man, wire.DefaultCodecs())
//
//	pkg, err := ld.Load("BodyPack")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(pkg.Summary.ExportCount, "exports materialized")
package upksuite

import "io"

// RowCodec decodes and encodes one fixed table row type. The core consumes
// header, name, import, and export rows only through this contract; the
// wire package provides the default little-endian implementations.
type RowCodec[T any] interface {
	Decode(r io.Reader) (T, error)
	Encode(w io.Writer, v T) error
}
