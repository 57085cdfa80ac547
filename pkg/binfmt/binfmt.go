// Package binfmt holds the pieces shared by the BSP, WAD and miptex decoders:
// the error taxonomy, fixed-size name fields and bounds-checked slicing.
//
// QPov
//
// Copyright (C) Thomas Habets <thomas@habets.se> 2015
// https://github.com/ThomasHabets/qpov
//
//   This program is free software; you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation; either version 2 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License along
//   with this program; if not, write to the Free Software Foundation, Inc.,
//   51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
//
package binfmt

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// NameSize is the size of the fixed name field in miptex and WAD records.
const NameSize = 16

var (
	// ErrVersionMismatch means the magic or version field is wrong. The file is not this format.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrOutOfBounds means a lump or record read would go past the end of the buffer.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrIndexOutOfRange means a cross reference points outside its target table.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidName means a fixed size name field is not valid text.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnsupportedCompression means a WAD entry has its compression flag set.
	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// Name decodes a fixed size ASCIIZ name field.
// The name stops at the first NUL, anything after it is ignored. A field with no
// NUL at all uses every byte. Either way the result must be valid UTF-8.
func Name(b []byte) (string, error) {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, b)
	}
	return string(b), nil
}

// Slice returns data[off:off+n], or ErrOutOfBounds if that's past the end of data.
func Slice(data []byte, off, n uint64) ([]byte, error) {
	end := off + n
	if end < off || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrOutOfBounds, off, end, len(data))
	}
	return data[off:end], nil
}
