// Package fixture builds small BSP, WAD and miptex files for tests.
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
package fixture

import (
	"bytes"
	"encoding/binary"
)

// BlueIndex is the palette index that is pure blue in fixture textures.
const BlueIndex = 255

func pack(data ...interface{}) []byte {
	var buf bytes.Buffer
	for _, d := range data {
		if err := binary.Write(&buf, binary.LittleEndian, d); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func name16(s string) [16]byte {
	var ret [16]byte
	copy(ret[:], s)
	return ret
}

// Miptex builds a texture record. If present is false all mip offsets are zero.
// Palette index i is (i, i, i) except BlueIndex. Pixels of mip level n have
// index fill+n.
func Miptex(name string, w, h uint32, fill byte, present bool) []byte {
	hdr := struct {
		Name          [16]byte
		Width, Height uint32
		Offsets       [4]uint32
	}{Name: name16(name), Width: w, Height: h}
	if !present {
		return pack(&hdr)
	}
	var pix []byte
	o := uint32(40)
	for i := uint32(0); i < 4; i++ {
		hdr.Offsets[i] = o
		n := (w * h) >> (2 * i)
		pix = append(pix, bytes.Repeat([]byte{fill + byte(i)}, int(n))...)
		o += n
	}
	pix = append(pix, 0, 0)
	for i := 0; i < 256; i++ {
		if i == BlueIndex {
			pix = append(pix, 0, 0, 255)
			continue
		}
		pix = append(pix, byte(i), byte(i), byte(i))
	}
	return append(pack(&hdr), pix...)
}

// A WADEntry is one file to put in a WAD.
type WADEntry struct {
	Name        string
	Type        uint8 // Zero means miptex.
	Compression uint8
	Data        []byte
}

// WAD builds a WAD3 file. The directory is put at the end.
func WAD(entries ...WADEntry) []byte {
	type dirEntry struct {
		FilePos, DiskSize, Size uint32
		Type, Compression       uint8
		Padding                 uint16
		Name                    [16]byte
	}
	var body bytes.Buffer
	var dir []dirEntry
	for _, e := range entries {
		typ := e.Type
		if typ == 0 {
			typ = 0x43
		}
		dir = append(dir, dirEntry{
			FilePos:     uint32(12 + body.Len()),
			DiskSize:    uint32(len(e.Data)),
			Size:        uint32(len(e.Data)),
			Type:        typ,
			Compression: e.Compression,
			Name:        name16(e.Name),
		})
		body.Write(e.Data)
	}
	ret := pack([4]byte{'W', 'A', 'D', '3'}, uint32(len(entries)), uint32(12+body.Len()))
	ret = append(ret, body.Bytes()...)
	if len(dir) > 0 {
		ret = append(ret, pack(dir)...)
	}
	return ret
}

// Entities is the entity text of QuadBSP.
const Entities = `{
"classname" "worldspawn"
"skyname" "desert"
"wad" "\half-life\valve\halflife.wad"
}
{
"classname" "info_player_start"
"origin" "32 32 36"
}
`

// QuadBSP builds a version 30 map with two models.
//
// Model 0 is a 64x64 square on the floor, using texture texName, plus a sky face.
// Model 1 is a triangle using the same texture.
// If embedded is false the texture has no pixels in the BSP and must come from a WAD.
func QuadBSP(texName string, embedded bool) []byte {
	type plane struct {
		Normal [3]float32
		Dist   float32
		Type   int32
	}
	type face struct {
		PlaneID, Side  uint16
		FirstSurfedge  uint32
		NumSurfedges   uint16
		TexInfo        uint16
		Styles         [4]uint8
		LightmapOffset uint32
	}
	type texInfo struct {
		S      [3]float32
		SShift float32
		T      [3]float32
		TShift float32
		Tex    uint32
		Flags  uint32
	}
	type model struct {
		Mins, Maxs, Origin [3]float32
		HeadNodes          [4]int32
		VisLeafs           int32
		FirstFace          uint32
		NumFaces           uint32
	}

	tex := [][]byte{
		Miptex(texName, 16, 16, 1, embedded),
		Miptex("sky", 16, 16, 1, true),
	}
	texLump := pack(uint32(len(tex)), []uint32{12, 12 + uint32(len(tex[0]))})
	for _, t := range tex {
		texLump = append(texLump, t...)
	}

	var lumps [15][]byte
	lumps[0] = append([]byte(Entities), 0)
	lumps[1] = pack([]plane{{Normal: [3]float32{0, 0, 1}}})
	lumps[2] = texLump
	lumps[3] = pack([][3]float32{
		{0, 0, 0}, {64, 0, 0}, {64, 64, 0}, {0, 64, 0},
		{0, 0, 128}, {16, 0, 128}, {16, 16, 128},
	})
	lumps[6] = pack([]texInfo{
		{S: [3]float32{1, 0, 0}, T: [3]float32{0, 1, 0}, Tex: 0},
		{S: [3]float32{1, 0, 0}, T: [3]float32{0, 1, 0}, Tex: 1},
	})
	lumps[7] = pack([]face{
		{FirstSurfedge: 0, NumSurfedges: 4, TexInfo: 0, Styles: [4]uint8{0, 255, 255, 255}, LightmapOffset: 0},
		{FirstSurfedge: 4, NumSurfedges: 3, TexInfo: 1, Styles: [4]uint8{255, 255, 255, 255}},
		{FirstSurfedge: 4, NumSurfedges: 3, TexInfo: 0, Styles: [4]uint8{0, 255, 255, 255}, LightmapOffset: 75},
	})
	// 5x5 block for the square, 2x2 for the triangle.
	lumps[8] = bytes.Repeat([]byte{200, 100, 50}, 25+4)
	lumps[12] = pack([][2]uint16{{0, 0}, {0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 4}})
	lumps[13] = pack([]int32{1, 2, 3, 4, 5, 6, 7})
	lumps[14] = pack([]model{
		{Maxs: [3]float32{64, 64, 128}, FirstFace: 0, NumFaces: 2},
		{FirstFace: 2, NumFaces: 1, Origin: [3]float32{0, 0, 8}},
	})

	var body bytes.Buffer
	var dir [15][2]uint32
	const headerSize = 4 + 15*8
	for i, l := range lumps {
		dir[i] = [2]uint32{uint32(headerSize + body.Len()), uint32(len(l))}
		body.Write(l)
	}
	return append(pack(uint32(30), dir), body.Bytes()...)
}
