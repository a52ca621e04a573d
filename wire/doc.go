// Package wire implements the default little-endian row codecs for the
// container format.
//
// The core packages consume these only through the RowCodec contract in
// the module root, so an alternate wire dialect can be swapped in without
// touching the loader or exporter. All multi-byte values are little-endian;
// ObjectIndex values are written as 32-bit two's complement.
package wire
