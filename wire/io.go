package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
)

// maxStringLength bounds allocations to prevent OOM from malformed streams
const maxStringLength = 100000

func errBadCount(what string, n int32) error {
	return fmt.Errorf("%s count %d out of range", what, n)
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeI32(w io.Writer, v int32) error {
	return writeU32(w, uint32(v))
}

// readString reads a length-prefixed string. A positive length counts
// bytes including the trailing NUL; a negative length counts UTF-16 code
// units including the terminator.
func readString(r io.Reader) (string, error) {
	n, err := readI32(r)
	if err != nil {
		return "", err
	}
	switch {
	case n == 0:
		return "", nil
	case n > 0:
		if n > maxStringLength {
			return "", fmt.Errorf("string length %d exceeds limit", n)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		if buf[n-1] == 0 {
			buf = buf[:n-1]
		}
		return string(buf), nil
	default:
		units := -n
		if units > maxStringLength {
			return "", fmt.Errorf("string length %d exceeds limit", units)
		}
		buf := make([]byte, 2*units)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		u16 := make([]uint16, units)
		for i := range u16 {
			u16[i] = binary.LittleEndian.Uint16(buf[2*i:])
		}
		if units > 0 && u16[units-1] == 0 {
			u16 = u16[:units-1]
		}
		return string(utf16.Decode(u16)), nil
	}
}

// writeString writes a length-prefixed NUL-terminated string. The decoder's
// UTF-16 form is read-only; emission always uses the byte form.
func writeString(w io.Writer, s string) error {
	if s == "" {
		return writeI32(w, 0)
	}
	if err := writeI32(w, int32(len(s)+1)); err != nil {
		return err
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}
