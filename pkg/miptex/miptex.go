// Package miptex decodes palette-indexed mip textures, as found embedded in
// Half-Life BSP files and inside WAD3 archives.
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
package miptex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

const (
	// MipLevels is the number of precalculated sizes each texture is stored in.
	MipLevels = 4

	// Size of the on-disk header, to prevent accidentally adding fields to RawHeader.
	fileHeaderSize = binfmt.NameSize + 4 + 4 + MipLevels*4

	paletteSize = 256 * 3

	// Two bytes of nothing between the last mip level and the palette.
	paletteGap = 2

	// Textures whose name starts with this are chroma keyed on pure blue.
	transparentPrefix = '{'
)

// A RawHeader is the miptex header as it appears in the file.
// Offsets are relative to the start of the header itself, not to the file.
// An offset of zero means the pixels are not here and must be found in a WAD.
type RawHeader struct {
	NameBytes [binfmt.NameSize]byte
	Width     uint32 // Multiple of 16.
	Height    uint32 // Multiple of 16.
	Offsets   [MipLevels]uint32
}

// PixelData is either Present or Absent.
type PixelData interface {
	pixelData()
}

// Present holds the palette indices for each mip level, and the palette they index into.
type Present struct {
	Mips    [MipLevels][]byte
	Palette []byte // 256 RGB triples.
}

// Absent is the state of a texture that only has a name, and is to be loaded from a WAD.
type Absent struct{}

func (*Present) pixelData() {}
func (Absent) pixelData()   {}

// A MipTexture is a decoded texture. Data is never nil.
type MipTexture struct {
	Name   string
	Width  uint32
	Height uint32
	Data   PixelData
}

// Decode decodes the miptex whose header starts at data[base:].
// Mip offsets in the header are relative to base.
func Decode(data []byte, base int) (*MipTexture, error) {
	if base < 0 {
		return nil, fmt.Errorf("miptex header at %d: %w", base, binfmt.ErrOutOfBounds)
	}
	hb, err := binfmt.Slice(data, uint64(base), fileHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("miptex header at %d: %w", base, err)
	}
	var h RawHeader
	if err := binary.Read(bytes.NewReader(hb), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading miptex header: %w", err)
	}
	name, err := binfmt.Name(h.NameBytes[:])
	if err != nil {
		return nil, fmt.Errorf("miptex name: %w", err)
	}
	ret := &MipTexture{
		Name:   name,
		Width:  h.Width,
		Height: h.Height,
		Data:   Absent{},
	}
	for _, o := range h.Offsets {
		if o == 0 {
			return ret, nil
		}
	}

	p := &Present{}
	size := uint64(h.Width) * uint64(h.Height)
	for i, o := range h.Offsets {
		n := size >> (2 * uint(i))
		p.Mips[i], err = binfmt.Slice(data, uint64(base)+uint64(o), n)
		if err != nil {
			return nil, fmt.Errorf("miptex %q mip level %d: %w", name, i, err)
		}
	}
	palOfs := uint64(base) + uint64(h.Offsets[MipLevels-1]) + (size >> (2 * (MipLevels - 1))) + paletteGap
	p.Palette, err = binfmt.Slice(data, palOfs, paletteSize)
	if err != nil {
		return nil, fmt.Errorf("miptex %q palette: %w", name, err)
	}
	ret.Data = p
	return ret, nil
}

// Absent returns true if the texture has no pixel data.
func (m *MipTexture) Absent() bool {
	_, ok := m.Data.(*Present)
	return !ok
}

// Transparent returns true if pure blue is see-through in this texture.
func (m *MipTexture) Transparent() bool {
	return len(m.Name) > 0 && m.Name[0] == transparentPrefix
}

// MipWidth returns the width of a given mip level.
func (m *MipTexture) MipWidth(level int) int {
	return int(m.Width >> uint(level))
}

// MipHeight returns the height of a given mip level.
func (m *MipTexture) MipHeight(level int) int {
	return int(m.Height >> uint(level))
}

// Pixels returns RGBA bytes for a mip level, or false if there's no pixel data.
func (m *MipTexture) Pixels(level int) ([]byte, bool) {
	p, ok := m.Data.(*Present)
	if !ok || level < 0 || level >= MipLevels {
		return nil, false
	}
	transparent := m.Transparent()
	ret := make([]byte, 0, len(p.Mips[level])*4)
	for _, idx := range p.Mips[level] {
		rgb := p.Palette[int(idx)*3 : int(idx)*3+3]
		a := byte(255)
		if transparent && rgb[0] == 0 && rgb[1] == 0 && rgb[2] == 255 {
			a = 0
		}
		ret = append(ret, rgb[0], rgb[1], rgb[2], a)
	}
	return ret, true
}

// Image returns a mip level as an image, or false if there's no pixel data.
func (m *MipTexture) Image(level int) (*image.NRGBA, bool) {
	pix, ok := m.Pixels(level)
	if !ok {
		return nil, false
	}
	w, h := m.MipWidth(level), m.MipHeight(level)
	if len(pix) != w*h*4 {
		// Odd sizes that don't divide evenly.
		return nil, false
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, true
}
