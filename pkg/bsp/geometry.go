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
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

// LightmapScale is how many texture texels share one lightmap texel, in each direction.
const LightmapScale = 16

// A Vertex is one corner of one face, with everything needed to draw it.
// Vertices are not shared between faces.
type Vertex struct {
	Position mgl32.Vec3 // Model origin already added.
	Normal   mgl32.Vec3

	// Texture coordinate. Divided by texture size if the size is known,
	// otherwise in texels.
	UV mgl32.Vec2

	// Coordinate inside the face's lightmap block, in lightmap texels.
	LightmapUV mgl32.Vec2

	// Index of the face's first lightmap texel, and the block size.
	// Same for every vertex of a face.
	LightmapOffset uint32
	LightmapSize   [2]uint32
}

// A Face is a polygon in a Geometry. Its vertices are Vertices[First:First+Count], in winding order.
type Face struct {
	First   int
	Count   int
	Texture string

	LightmapOffset uint32 // In texels, not bytes.
	LightmapSize   [2]uint32
	HasLightmap    bool
}

// Geometry is one model's faces, with all indirections resolved.
type Geometry struct {
	Vertices []Vertex
	Faces    []Face
}

// Winding returns the vertex indices of a face, walking its surfedges in order.
func (m *Map) Winding(face int) ([]uint16, error) {
	if face < 0 || face >= len(m.Faces) {
		return nil, fmt.Errorf("%w: face %d, have %d", binfmt.ErrIndexOutOfRange, face, len(m.Faces))
	}
	f := &m.Faces[face]
	first, num := uint64(f.FirstSurfedge), uint64(f.NumSurfedges)
	if first+num > uint64(len(m.Surfedges)) {
		return nil, fmt.Errorf("%w: face %d surfedges %d+%d, have %d", binfmt.ErrIndexOutOfRange, face, first, num, len(m.Surfedges))
	}
	ret := make([]uint16, 0, num)
	for _, s := range m.Surfedges[first : first+num] {
		v, err := ResolveSurfedge(m.Edges, s)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", face, err)
		}
		if int(v) >= len(m.Vertices) {
			return nil, fmt.Errorf("%w: face %d vertex %d, have %d", binfmt.ErrIndexOutOfRange, face, v, len(m.Vertices))
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// normal returns the face normal, facing the side the face is on.
func (m *Map) normal(face int) (mgl32.Vec3, error) {
	f := &m.Faces[face]
	if int(f.PlaneID) >= len(m.Planes) {
		return mgl32.Vec3{}, fmt.Errorf("%w: face %d plane %d, have %d", binfmt.ErrIndexOutOfRange, face, f.PlaneID, len(m.Planes))
	}
	n := m.Planes[f.PlaneID].Normal
	if f.Side != 0 {
		n = n.Mul(-1)
	}
	return n, nil
}

// ModelGeometry resolves all faces of a model into vertices.
func (m *Map) ModelGeometry(model int) (*Geometry, error) {
	if model < 0 || model >= len(m.Models) {
		return nil, fmt.Errorf("%w: model %d, have %d", binfmt.ErrIndexOutOfRange, model, len(m.Models))
	}
	mod := &m.Models[model]
	first, num := uint64(mod.FirstFace), uint64(mod.NumFaces)
	if first+num > uint64(len(m.Faces)) {
		return nil, fmt.Errorf("%w: model %d faces %d+%d, have %d", binfmt.ErrIndexOutOfRange, model, first, num, len(m.Faces))
	}

	g := &Geometry{}
	for fn := int(first); fn < int(first+num); fn++ {
		if err := m.addFace(g, fn, mod.Origin); err != nil {
			return nil, fmt.Errorf("model %d: %w", model, err)
		}
	}
	return g, nil
}

func (m *Map) addFace(g *Geometry, fn int, origin mgl32.Vec3) error {
	f := &m.Faces[fn]
	winding, err := m.Winding(fn)
	if err != nil {
		return err
	}
	normal, err := m.normal(fn)
	if err != nil {
		return err
	}
	ti, tex, err := m.texture(int(f.TexInfoID))
	if err != nil {
		return fmt.Errorf("face %d: %w", fn, err)
	}

	face := Face{
		First:          len(g.Vertices),
		Count:          len(winding),
		Texture:        tex.Name,
		LightmapOffset: f.LightmapOffset / 3,
		HasLightmap:    f.Styles[0] != 0xff && int64(f.LightmapOffset) < int64(len(m.Lighting)),
	}
	if len(winding) == 0 {
		g.Faces = append(g.Faces, face)
		return nil
	}

	// Texel space coordinates, before any scaling.
	st := make([]mgl32.Vec2, len(winding))
	for i, vi := range winding {
		v := m.Vertices[vi]
		st[i] = mgl32.Vec2{v.Dot(ti.S) + ti.SShift, v.Dot(ti.T) + ti.TShift}
	}

	// Lightmap extents, in whole texels.
	minS, maxS := math32.Floor(st[0][0]), math32.Floor(st[0][0])
	minT, maxT := math32.Floor(st[0][1]), math32.Floor(st[0][1])
	for _, c := range st[1:] {
		minS = math32.Min(minS, math32.Floor(c[0]))
		maxS = math32.Max(maxS, math32.Floor(c[0]))
		minT = math32.Min(minT, math32.Floor(c[1]))
		maxT = math32.Max(maxT, math32.Floor(c[1]))
	}
	blockS := math32.Floor(minS / LightmapScale)
	blockT := math32.Floor(minT / LightmapScale)
	face.LightmapSize = [2]uint32{
		uint32(math32.Ceil(maxS/LightmapScale) - blockS + 1),
		uint32(math32.Ceil(maxT/LightmapScale) - blockT + 1),
	}

	for i, vi := range winding {
		uv := st[i]
		if tex.Width > 0 && tex.Height > 0 {
			uv = mgl32.Vec2{uv[0] / float32(tex.Width), uv[1] / float32(tex.Height)}
		}
		g.Vertices = append(g.Vertices, Vertex{
			Position: m.Vertices[vi].Add(origin),
			Normal:   normal,
			UV:       uv,
			LightmapUV: mgl32.Vec2{
				(st[i][0] - blockS*LightmapScale) / LightmapScale,
				(st[i][1] - blockT*LightmapScale) / LightmapScale,
			},
			LightmapOffset: face.LightmapOffset,
			LightmapSize:   face.LightmapSize,
		})
	}
	g.Faces = append(g.Faces, face)
	return nil
}
