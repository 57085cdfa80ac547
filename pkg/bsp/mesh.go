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
	"sort"
	"strings"
)

// Textures that are never drawn as world geometry.
var skipTextures = []string{
	"sky",        // Drawn by the skybox instead.
	"aaatrigger", // Invisible trigger volumes.
}

// SkipTexture returns true if faces with this texture should not be drawn.
func SkipTexture(name string) bool {
	for _, s := range skipTextures {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// A Batch is all triangles that use the same texture.
type Batch struct {
	Texture string
	Indices []uint32 // Three per triangle, indices into Geometry.Vertices.
}

// Triangulate turns a convex polygon into a triangle fan around its first vertex.
// The triangle count is len(poly)-2, or zero for less than three vertices.
func Triangulate(poly []uint32) []uint32 {
	switch {
	case len(poly) < 3:
		return nil
	case len(poly) == 3:
		return poly
	}
	ret := make([]uint32, 0, (len(poly)-2)*3)
	for i := 1; i < len(poly)-1; i++ {
		ret = append(ret, poly[0], poly[i], poly[i+1])
	}
	return ret
}

// Indices returns the vertex index range of a face.
func (f *Face) Indices() []uint32 {
	ret := make([]uint32, f.Count)
	for i := range ret {
		ret[i] = uint32(f.First + i)
	}
	return ret
}

// Batches triangulates every face and groups the triangles by texture, sorted by name.
// Faces with textures that aren't drawn are left out.
func (g *Geometry) Batches() []Batch {
	byName := make(map[string][]uint32)
	for i := range g.Faces {
		f := &g.Faces[i]
		if SkipTexture(f.Texture) {
			continue
		}
		tris := Triangulate(f.Indices())
		if len(tris) == 0 {
			continue
		}
		byName[f.Texture] = append(byName[f.Texture], tris...)
	}
	ret := make([]Batch, 0, len(byName))
	for name, idx := range byName {
		ret = append(ret, Batch{
			Texture: name,
			Indices: idx,
		})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Texture < ret[j].Texture
	})
	return ret
}

// TextureNames returns the sorted names of all textures needed to draw the batches.
func TextureNames(batches []Batch) []string {
	ret := make([]string, len(batches))
	for i, b := range batches {
		ret[i] = b.Texture
	}
	return ret
}

// LightmapTexels turns the lighting lump into RGBA, with alpha always 255.
// A trailing partial RGB triple is dropped.
func LightmapTexels(lighting []byte) []byte {
	n := len(lighting) / 3
	ret := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		ret = append(ret, lighting[i*3], lighting[i*3+1], lighting[i*3+2], 255)
	}
	return ret
}
