// Package pak loads Quake and Half-Life PAK files.
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
package pak

import (
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

const (
	magic         = "PACK"
	nameSize      = 56
	fileEntrySize = 64
)

type fileHeader struct {
	ID            [4]byte
	Directory     uint32
	DirectorySize uint32
}

type fileEntry struct {
	NameBytes [nameSize]byte
	Offset    uint32
	Size      uint32
}

// Entry is where a file is stored in the PAK.
type Entry struct {
	Pos  uint32
	Size uint32
}

// Pak is an open PAK file.
type Pak struct {
	Name    string
	Entries map[string]Entry

	r      io.ReaderAt
	size   int64
	closer io.Closer
}

// Open opens a PAK file on disk. Close it when done.
func Open(fn string) (*Pak, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p, err := New(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading PAK %q: %w", fn, err)
	}
	p.Name = fn
	p.closer = f
	return p, nil
}

// New reads the PAK directory from r, which holds size bytes.
func New(r io.ReaderAt, size int64) (*Pak, error) {
	ret := &Pak{
		Entries: make(map[string]Entry),
		r:       r,
		size:    size,
	}

	var h fileHeader
	if err := binary.Read(io.NewSectionReader(r, 0, size), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if string(h.ID[:]) != magic {
		return nil, fmt.Errorf("%w: magic %q", binfmt.ErrVersionMismatch, h.ID[:])
	}
	if h.DirectorySize%fileEntrySize != 0 {
		return nil, fmt.Errorf("directory size %d is not a multiple of %d", h.DirectorySize, fileEntrySize)
	}
	end := int64(h.Directory) + int64(h.DirectorySize)
	if end > size {
		return nil, fmt.Errorf("%w: directory ends at %d of %d bytes", binfmt.ErrOutOfBounds, end, size)
	}

	es := make([]fileEntry, h.DirectorySize/fileEntrySize)
	if err := binary.Read(io.NewSectionReader(r, int64(h.Directory), int64(h.DirectorySize)), binary.LittleEndian, es); err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	for _, e := range es {
		name, err := binfmt.Name(e.NameBytes[:])
		if err != nil {
			return nil, err
		}
		if int64(e.Offset)+int64(e.Size) > size {
			return nil, fmt.Errorf("%w: %q ends at %d of %d bytes", binfmt.ErrOutOfBounds, name, int64(e.Offset)+int64(e.Size), size)
		}
		ret.Entries[name] = Entry{
			Pos:  e.Offset,
			Size: e.Size,
		}
	}
	return ret, nil
}

// Get returns a reader for one file.
func (p *Pak) Get(fn string) (*io.SectionReader, error) {
	entry, found := p.Entries[fn]
	if !found {
		return nil, fmt.Errorf("%q: %w", fn, fs.ErrNotExist)
	}
	return io.NewSectionReader(p.r, int64(entry.Pos), int64(entry.Size)), nil
}

// ReadFile returns the contents of one file.
func (p *Pak) ReadFile(fn string) ([]byte, error) {
	r, err := p.Get(fn)
	if err != nil {
		return nil, err
	}
	b := make([]byte, r.Size())
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("reading %q: %w", fn, err)
	}
	return b, nil
}

// List returns the file names, sorted.
func (p *Pak) List() []string {
	var ret []string
	for fn := range p.Entries {
		ret = append(ret, fn)
	}
	sort.Strings(ret)
	return ret
}

// Close closes the underlying file, if Open opened it.
func (p *Pak) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// MultiPak is a set of PAKs. Later ones override earlier ones, like the game does it.
type MultiPak []*Pak

// MultiOpen opens PAK files. Empty names are skipped.
func MultiOpen(fns ...string) (MultiPak, error) {
	var ret MultiPak
	for _, fn := range fns {
		if fn == "" {
			continue
		}
		p, err := Open(fn)
		if err != nil {
			ret.Close()
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

// List returns the file names in all PAKs, sorted and without duplicates.
func (m MultiPak) List() []string {
	seen := make(map[string]bool)
	var ret []string
	for _, p := range m {
		for fn := range p.Entries {
			if !seen[fn] {
				seen[fn] = true
				ret = append(ret, fn)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// Get returns a reader for the file from the last PAK that has it.
func (m MultiPak) Get(fn string) (*io.SectionReader, error) {
	for i := len(m); i > 0; i-- {
		if _, found := m[i-1].Entries[fn]; found {
			return m[i-1].Get(fn)
		}
	}
	return nil, fmt.Errorf("%q: %w", fn, fs.ErrNotExist)
}

// ReadFile returns the contents of the file from the last PAK that has it.
func (m MultiPak) ReadFile(fn string) ([]byte, error) {
	for i := len(m); i > 0; i-- {
		if _, found := m[i-1].Entries[fn]; found {
			return m[i-1].ReadFile(fn)
		}
	}
	return nil, fmt.Errorf("%q: %w", fn, fs.ErrNotExist)
}

// Close closes all PAKs.
func (m MultiPak) Close() {
	for _, p := range m {
		p.Close()
	}
}
