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

// The file contains the fixed size record decoders.

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
	"github.com/ThomasHabets/hlbsp/pkg/miptex"
)

const (
	// Sizes of various structs that are part of the file format.
	// This is to prevent accidentally adding fields to those structs.
	filePlaneSize       = 3*4 + 4 + 4
	fileVertexSize      = 3 * 4
	fileEdgeSize        = 2 + 2
	fileSurfedgeSize    = 4
	fileFaceSize        = 2 + 2 + 4 + 2 + 2 + 4*1 + 4
	fileTexInfoSize     = 3*4 + 4 + 3*4 + 4 + 4 + 4
	fileModelSize       = 3*3*4 + 4*4 + 4 + 4 + 4
	fileMarksurfaceSize = 2

	// Texture directory entries that don't point to anything.
	unusedMipTexOffset = ^uint32(0)
)

// A Plane is a plane the faces lie in.
type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
	Type   int32 // Axis aligned or not. Not needed for drawing.
}

// A RawEdge is the edge of one or more polygons in the file.
// V0 and V1 are indices in the vertex table.
// Edges are not referenced directly from faces, only via surfedges.
type RawEdge struct {
	V0 uint16
	V1 uint16
}

// A Surfedge is a signed edge index. Positive means the edge is walked V0 to V1,
// negative means it's walked backwards.
type Surfedge int32

// A RawFace is a polygon as it appears in the BSP file.
type RawFace struct {
	PlaneID       uint16
	Side          uint16 // Nonzero if the face is behind the plane, so the normal is flipped.
	FirstSurfedge uint32
	NumSurfedges  uint16
	TexInfoID     uint16

	// Lightstyles. 0xff means no lightmap in that slot.
	Styles [4]uint8

	LightmapOffset uint32 // Byte offset into the lighting lump.
}

// A RawTexInfo is information about how to apply a texture (miptex) onto a face.
// Texture coordinates are not stored with the vertices, but are calculated by
// projecting world coordinates onto S and T:
//
//	u = (v dot S) + SShift
//	v = (v dot T) + TShift
type RawTexInfo struct {
	S         mgl32.Vec3 // S vector, horizontal in texture space.
	SShift    float32
	T         mgl32.Vec3 // T vector, vertical in texture space.
	TShift    float32
	TextureID uint32 // Index into the texture directory.
	Flags     uint32
}

// A RawModel is the model definition of some polygons.
// Most of the level is in model 0. Others are doors and other movables.
type RawModel struct {
	Mins, Maxs mgl32.Vec3 // Bounding box.
	Origin     mgl32.Vec3 // Usually (0,0,0).
	HeadNodes  [4]int32   // BSP and clip hull roots.
	VisLeafs   int32
	FirstFace  uint32
	NumFaces   uint32
}

// decodeRecords splits data into as many records as fit. Any trailing partial record is ignored.
func decodeRecords[T any](data []byte, size int) ([]T, error) {
	n := len(data) / size
	ret := make([]T, n)
	if err := binary.Read(bytes.NewReader(data[:n*size]), binary.LittleEndian, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DecodePlanes decodes the planes lump.
func DecodePlanes(data []byte) ([]Plane, error) {
	ret, err := decodeRecords[Plane](data, filePlaneSize)
	if err != nil {
		return nil, fmt.Errorf("reading planes: %w", err)
	}
	return ret, nil
}

// DecodeVertices decodes the vertices lump.
func DecodeVertices(data []byte) ([]mgl32.Vec3, error) {
	ret, err := decodeRecords[mgl32.Vec3](data, fileVertexSize)
	if err != nil {
		return nil, fmt.Errorf("reading vertices: %w", err)
	}
	return ret, nil
}

// DecodeEdges decodes the edges lump.
func DecodeEdges(data []byte) ([]RawEdge, error) {
	ret, err := decodeRecords[RawEdge](data, fileEdgeSize)
	if err != nil {
		return nil, fmt.Errorf("reading edges: %w", err)
	}
	return ret, nil
}

// DecodeSurfedges decodes the surfedges lump.
func DecodeSurfedges(data []byte) ([]Surfedge, error) {
	ret, err := decodeRecords[Surfedge](data, fileSurfedgeSize)
	if err != nil {
		return nil, fmt.Errorf("reading surfedges: %w", err)
	}
	return ret, nil
}

// DecodeFaces decodes the faces lump.
func DecodeFaces(data []byte) ([]RawFace, error) {
	ret, err := decodeRecords[RawFace](data, fileFaceSize)
	if err != nil {
		return nil, fmt.Errorf("reading faces: %w", err)
	}
	return ret, nil
}

// DecodeTexInfos decodes the texinfo lump.
func DecodeTexInfos(data []byte) ([]RawTexInfo, error) {
	ret, err := decodeRecords[RawTexInfo](data, fileTexInfoSize)
	if err != nil {
		return nil, fmt.Errorf("reading texinfo: %w", err)
	}
	return ret, nil
}

// DecodeModels decodes the models lump.
func DecodeModels(data []byte) ([]RawModel, error) {
	ret, err := decodeRecords[RawModel](data, fileModelSize)
	if err != nil {
		return nil, fmt.Errorf("reading models: %w", err)
	}
	return ret, nil
}

// DecodeMarksurfaces decodes the marksurfaces lump, the leaf to face lists.
func DecodeMarksurfaces(data []byte) ([]uint16, error) {
	ret, err := decodeRecords[uint16](data, fileMarksurfaceSize)
	if err != nil {
		return nil, fmt.Errorf("reading marksurfaces: %w", err)
	}
	return ret, nil
}

// DecodeEntities returns the entities text. It ends at the first NUL, or at the end of the lump.
func DecodeEntities(data []byte) string {
	if n := bytes.IndexByte(data, 0); n >= 0 {
		data = data[:n]
	}
	return string(data)
}

// DecodeTextureOffsets returns the texture directory: offsets relative to the
// start of the textures lump.
func DecodeTextureOffsets(data []byte) ([]uint32, error) {
	cb, err := binfmt.Slice(data, 0, 4)
	if err != nil {
		return nil, fmt.Errorf("reading miptex count: %w", err)
	}
	n := uint64(binary.LittleEndian.Uint32(cb))
	ob, err := binfmt.Slice(data, 4, n*4)
	if err != nil {
		return nil, fmt.Errorf("reading %d miptex offsets: %w", n, err)
	}
	ret := make([]uint32, n)
	for i := range ret {
		ret[i] = binary.LittleEndian.Uint32(ob[i*4:])
	}
	return ret, nil
}

// DecodeTextures decodes every texture in the textures lump.
// Unused directory slots become nameless absent textures, so that indices stay the same.
func DecodeTextures(data []byte) ([]*miptex.MipTexture, error) {
	ofs, err := DecodeTextureOffsets(data)
	if err != nil {
		return nil, err
	}
	ret := make([]*miptex.MipTexture, len(ofs))
	for n, o := range ofs {
		if o == unusedMipTexOffset {
			ret[n] = &miptex.MipTexture{Data: miptex.Absent{}}
			continue
		}
		if ret[n], err = miptex.Decode(data, int(o)); err != nil {
			return nil, fmt.Errorf("miptex %d: %w", n, err)
		}
	}
	return ret, nil
}

// ResolveSurfedge returns the first vertex of a surfedge, honoring its direction.
func ResolveSurfedge(edges []RawEdge, s Surfedge) (uint16, error) {
	i := int64(s)
	back := i < 0
	if back {
		i = -i
	}
	if i >= int64(len(edges)) {
		return 0, fmt.Errorf("%w: surfedge %d, have %d edges", binfmt.ErrIndexOutOfRange, s, len(edges))
	}
	if back {
		return edges[i].V1, nil
	}
	return edges[i].V0, nil
}
