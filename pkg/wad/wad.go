// Package wad reads WAD3 texture archives, as used by Half-Life.
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
package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
	"github.com/ThomasHabets/hlbsp/pkg/miptex"
)

const (
	fileHeaderSize = 4 + 4 + 4
	fileEntrySize  = 4 + 4 + 4 + 1 + 1 + 2 + binfmt.NameSize
)

// Entry types.
const (
	TypePalette = 0x40
	TypeQPic    = 0x42
	TypeMipTex  = 0x43
	TypeFont    = 0x46
)

var magic = [4]byte{'W', 'A', 'D', '3'}

type fileHeader struct {
	Magic     [4]byte
	Count     uint32
	DirOffset uint32
}

type fileEntry struct {
	FilePos     uint32
	DiskSize    uint32
	Size        uint32 // Uncompressed.
	Type        uint8
	Compression uint8
	Padding     uint16
	NameBytes   [binfmt.NameSize]byte
}

// An Entry is one file in the archive.
type Entry struct {
	Name string
	Type uint8
	Size uint32 // Uncompressed size. Same as len(Data) since there's no compression.
	Data []byte // Points into the archive data.
}

// Archive is a parsed WAD file.
type Archive struct {
	// Name is for logging. Parse leaves it empty.
	Name    string
	Entries []Entry // In directory order.
	byName  map[string]int
}

// Parse reads the archive directory. Entry data is not copied, so data must
// not be modified while the archive is in use.
func Parse(data []byte) (*Archive, error) {
	hb, err := binfmt.Slice(data, 0, fileHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading WAD header: %w", err)
	}
	var h fileHeader
	if err := binary.Read(bytes.NewReader(hb), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading WAD header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: WAD magic %q, want %q", binfmt.ErrVersionMismatch, h.Magic[:], magic[:])
	}
	db, err := binfmt.Slice(data, uint64(h.DirOffset), uint64(h.Count)*fileEntrySize)
	if err != nil {
		return nil, fmt.Errorf("reading WAD directory of %d entries: %w", h.Count, err)
	}
	fes := make([]fileEntry, h.Count)
	if err := binary.Read(bytes.NewReader(db), binary.LittleEndian, fes); err != nil {
		return nil, fmt.Errorf("reading WAD directory: %w", err)
	}

	a := &Archive{
		Entries: make([]Entry, 0, len(fes)),
		byName:  make(map[string]int, len(fes)),
	}
	for n, fe := range fes {
		name, err := binfmt.Name(fe.NameBytes[:])
		if err != nil {
			return nil, fmt.Errorf("WAD entry %d: %w", n, err)
		}
		if fe.Compression != 0 {
			return nil, fmt.Errorf("WAD entry %d (%q): %w %d", n, name, binfmt.ErrUnsupportedCompression, fe.Compression)
		}
		b, err := binfmt.Slice(data, uint64(fe.FilePos), uint64(fe.DiskSize))
		if err != nil {
			return nil, fmt.Errorf("WAD entry %d (%q) data: %w", n, name, err)
		}
		// Later entries with the same name replace earlier ones.
		a.byName[name] = len(a.Entries)
		a.Entries = append(a.Entries, Entry{
			Name: name,
			Type: fe.Type,
			Size: fe.Size,
			Data: b,
		})
	}
	return a, nil
}

// Get looks up an entry by name. The name must match exactly, including case.
func (a *Archive) Get(name string) (*Entry, bool) {
	n, found := a.byName[name]
	if !found {
		return nil, false
	}
	return &a.Entries[n], true
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.Entries)
}

// MipTex decodes the entry as a texture. The entry type is not checked.
func (e *Entry) MipTex() (*miptex.MipTexture, error) {
	m, err := miptex.Decode(e.Data, 0)
	if err != nil {
		return nil, fmt.Errorf("WAD entry %q: %w", e.Name, err)
	}
	return m, nil
}

// TypeName returns a human readable entry type.
func (e *Entry) TypeName() string {
	switch e.Type {
	case TypePalette:
		return "palette"
	case TypeQPic:
		return "qpic"
	case TypeMipTex:
		return "miptex"
	case TypeFont:
		return "font"
	}
	return fmt.Sprintf("%#x", e.Type)
}
