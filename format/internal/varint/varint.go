// Package varint implements the unsigned LEB128 integers used for schematic block data.
package varint

import (
	"errors"
	"fmt"
	"io"
)

// MaxLen is the maximum encoded length of a 32-bit value.
const MaxLen = 5

var (
	// ErrOverflow is returned when a varint needs more than MaxLen bytes or exceeds 32 bits.
	ErrOverflow = errors.New("varint too long")
	// ErrTruncated is returned when the data ends before the last byte of a varint.
	ErrTruncated = errors.New("varint extends beyond data")
)

// Len returns the number of bytes Encode produces for v.
func Len(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Append appends the minimal encoding of v to dst.
func Append(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Encode returns the minimal encoding of v.
func Encode(v uint32) []byte {
	return Append(make([]byte, 0, Len(v)), v)
}

// Decode reads a single varint from the start of data.
// Returns the value and the number of bytes read.
func Decode(data []byte) (uint32, int, error) {
	var value uint32
	for i := 0; i < MaxLen; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		if i == MaxLen-1 && b > 0x0F {
			return 0, 0, ErrOverflow
		}
		value |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, ErrOverflow
}

// Read reads a single varint from r.
func Read(r io.ByteReader) (uint32, error) {
	var value uint32
	for i := 0; i < MaxLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return 0, ErrTruncated
			}
			return 0, err
		}
		if i == MaxLen-1 && b > 0x0F {
			return 0, ErrOverflow
		}
		value |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, ErrOverflow
}

// DecodeAll decodes varints until data is exhausted. sizeHint preallocates the
// result and is capped by len(data), since every varint takes at least one byte.
func DecodeAll(data []byte, sizeHint int) ([]int, error) {
	values := make([]int, 0, max(min(sizeHint, len(data)), 0))
	for offset := 0; offset < len(data); {
		v, n, err := Decode(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("decode varint %d at byte %d: %w", len(values), offset, err)
		}
		values = append(values, int(v))
		offset += n
	}
	return values, nil
}
