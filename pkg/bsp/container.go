package bsp

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

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

const (
	// Version is the only BSP file version supported.
	Version = 30

	// NumLumps is the number of entries in the lump directory.
	NumLumps = 15

	fileHeaderSize = 4 + NumLumps*8
)

// LumpType is the index of a lump in the directory.
type LumpType int

// Lumps, in directory order.
const (
	LumpEntities LumpType = iota
	LumpPlanes
	LumpTextures
	LumpVertices
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpClipnodes
	LumpLeaves
	LumpMarksurfaces
	LumpEdges
	LumpSurfedges
	LumpModels
)

var lumpNames = [NumLumps]string{
	"entities",
	"planes",
	"textures",
	"vertices",
	"visibility",
	"nodes",
	"texinfo",
	"faces",
	"lighting",
	"clipnodes",
	"leaves",
	"marksurfaces",
	"edges",
	"surfedges",
	"models",
}

func (l LumpType) String() string {
	if l < 0 || l >= NumLumps {
		return fmt.Sprintf("lump(%d)", int(l))
	}
	return lumpNames[l]
}

// A LumpEntry is one entry in the lump directory.
type LumpEntry struct {
	Offset uint32
	Length uint32
}

// RawHeader is the first thing in the file.
type RawHeader struct {
	Version uint32
	Lumps   [NumLumps]LumpEntry
}

// A Container is a BSP file split into lumps. It knows nothing about what's in them.
type Container struct {
	Header RawHeader
	data   []byte
}

// Parse checks the version and reads the lump directory.
// The container keeps a reference to data, which must not be modified after this.
func Parse(data []byte) (*Container, error) {
	if len(data) >= 4 {
		if v := binary.LittleEndian.Uint32(data); v != Version {
			return nil, fmt.Errorf("%w: got BSP version %d, only %d supported", binfmt.ErrVersionMismatch, v, Version)
		}
	}
	hb, err := binfmt.Slice(data, 0, fileHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading BSP header: %w", err)
	}
	c := &Container{data: data}
	if err := binary.Read(bytes.NewReader(hb), binary.LittleEndian, &c.Header); err != nil {
		return nil, fmt.Errorf("reading BSP header: %w", err)
	}
	return c, nil
}

// Lump returns the bytes of one lump. The returned slice aliases the container data.
func (c *Container) Lump(l LumpType) ([]byte, error) {
	if l < 0 || l >= NumLumps {
		return nil, fmt.Errorf("%w: %v", binfmt.ErrIndexOutOfRange, l)
	}
	e := c.Header.Lumps[l]
	b, err := binfmt.Slice(c.data, uint64(e.Offset), uint64(e.Length))
	if err != nil {
		return nil, fmt.Errorf("lump %v: %w", l, err)
	}
	return b, nil
}

// Size returns the total size of the file.
func (c *Container) Size() int {
	return len(c.data)
}
