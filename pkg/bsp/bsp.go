// Package bsp loads Half-Life (GoldSrc, version 30) BSP files.
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
// References:
// * http://hlbsp.sourceforge.net/index.php?content=bspdef
// * https://developer.valvesoftware.com/wiki/BSP_(GoldSrc)
// * http://www.gamers.org/dEngine/quake/spec/quake-spec34/qkspec_4.htm
package bsp

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
	"github.com/ThomasHabets/hlbsp/pkg/miptex"
)

// Map is the decoded BSP file data.
//
// Indirections such as Face->Surfedge->Edge->Vertex are not removed. That's what
// ModelGeometry is for. A Map is never modified after Load, so it's safe for
// concurrent use.
type Map struct {
	Entities     string // Raw entities text. See ParseEntities.
	Planes       []Plane
	Textures     []*miptex.MipTexture
	Vertices     []mgl32.Vec3
	TexInfos     []RawTexInfo
	Faces        []RawFace
	Lighting     []byte // RGB triples.
	Marksurfaces []uint16
	Edges        []RawEdge
	Surfedges    []Surfedge
	Models       []RawModel
}

// Load decodes every lump that's needed for drawing.
func Load(c *Container) (*Map, error) {
	var lumps [NumLumps][]byte
	for _, l := range []LumpType{
		LumpEntities, LumpPlanes, LumpTextures, LumpVertices, LumpTexInfo, LumpFaces,
		LumpLighting, LumpMarksurfaces, LumpEdges, LumpSurfedges, LumpModels,
	} {
		b, err := c.Lump(l)
		if err != nil {
			return nil, err
		}
		lumps[l] = b
	}

	m := &Map{}
	var err error
	m.Entities = DecodeEntities(lumps[LumpEntities])
	if m.Planes, err = DecodePlanes(lumps[LumpPlanes]); err != nil {
		return nil, err
	}
	if m.Textures, err = DecodeTextures(lumps[LumpTextures]); err != nil {
		return nil, fmt.Errorf("reading textures: %w", err)
	}
	if m.Vertices, err = DecodeVertices(lumps[LumpVertices]); err != nil {
		return nil, err
	}
	if m.TexInfos, err = DecodeTexInfos(lumps[LumpTexInfo]); err != nil {
		return nil, err
	}
	if m.Faces, err = DecodeFaces(lumps[LumpFaces]); err != nil {
		return nil, err
	}
	m.Lighting = lumps[LumpLighting]
	if m.Marksurfaces, err = DecodeMarksurfaces(lumps[LumpMarksurfaces]); err != nil {
		return nil, err
	}
	if m.Edges, err = DecodeEdges(lumps[LumpEdges]); err != nil {
		return nil, err
	}
	if m.Surfedges, err = DecodeSurfedges(lumps[LumpSurfedges]); err != nil {
		return nil, err
	}
	if m.Models, err = DecodeModels(lumps[LumpModels]); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadBytes parses and loads a BSP file already in memory.
func LoadBytes(data []byte) (*Map, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Load(c)
}

// ParseEntities parses the entities text of the map.
func (m *Map) ParseEntities() (Entities, error) {
	return ParseEntities(m.Entities)
}

// EmbeddedTextures returns the textures that have their pixels in the BSP file.
func (m *Map) EmbeddedTextures() []*miptex.MipTexture {
	var ret []*miptex.MipTexture
	for _, t := range m.Textures {
		if !t.Absent() {
			ret = append(ret, t)
		}
	}
	return ret
}

// texture returns the texture used by a texinfo.
func (m *Map) texture(texInfo int) (*RawTexInfo, *miptex.MipTexture, error) {
	if texInfo < 0 || texInfo >= len(m.TexInfos) {
		return nil, nil, fmt.Errorf("%w: texinfo %d, have %d", binfmt.ErrIndexOutOfRange, texInfo, len(m.TexInfos))
	}
	ti := &m.TexInfos[texInfo]
	if int64(ti.TextureID) >= int64(len(m.Textures)) {
		return nil, nil, fmt.Errorf("%w: texinfo %d texture %d, have %d", binfmt.ErrIndexOutOfRange, texInfo, ti.TextureID, len(m.Textures))
	}
	return ti, m.Textures[ti.TextureID], nil
}
