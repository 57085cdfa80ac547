package export

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

// The mesh is protobuf wire format, matching this message:
//
//	message Mesh {
//	  repeated float positions = 1;       // xyz per vertex.
//	  repeated float normals = 2;         // xyz per vertex.
//	  repeated float uvs = 3;             // uv per vertex.
//	  repeated float lightmap_uvs = 4;    // uv per vertex.
//	  repeated uint32 lightmap_info = 5;  // offset, width, height per vertex.
//	  repeated Batch batches = 6;
//	}
//	message Batch {
//	  string texture = 1;
//	  repeated uint32 indices = 2;
//	}
//
// Repeated scalars are packed.

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

const (
	fieldPositions    protowire.Number = 1
	fieldNormals      protowire.Number = 2
	fieldUVs          protowire.Number = 3
	fieldLightmapUVs  protowire.Number = 4
	fieldLightmapInfo protowire.Number = 5
	fieldBatches      protowire.Number = 6

	fieldBatchTexture protowire.Number = 1
	fieldBatchIndices protowire.Number = 2
)

// Mesh is the decoded form of the wire format, with flat arrays as uploaded to a GPU.
type Mesh struct {
	Positions    []float32
	Normals      []float32
	UVs          []float32
	LightmapUVs  []float32
	LightmapInfo []uint32
	Batches      []bsp.Batch
}

// NewMesh flattens a geometry.
func NewMesh(g *bsp.Geometry, batches []bsp.Batch, opts Options) *Mesh {
	m := &Mesh{Batches: batches}
	for _, v := range g.Vertices {
		p := opts.position(v.Position)
		n := opts.axes(v.Normal)
		m.Positions = append(m.Positions, p[:]...)
		m.Normals = append(m.Normals, n[:]...)
		m.UVs = append(m.UVs, v.UV[:]...)
		m.LightmapUVs = append(m.LightmapUVs, v.LightmapUV[:]...)
		m.LightmapInfo = append(m.LightmapInfo, v.LightmapOffset, v.LightmapSize[0], v.LightmapSize[1])
	}
	return m
}

func appendFloats(b []byte, num protowire.Number, fs []float32) []byte {
	if len(fs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(fs)*4))
	for _, f := range fs {
		b = protowire.AppendFixed32(b, math.Float32bits(f))
	}
	return b
}

func appendUint32s(b []byte, num protowire.Number, us []uint32) []byte {
	if len(us) == 0 {
		return b
	}
	var packed []byte
	for _, u := range us {
		packed = protowire.AppendVarint(packed, uint64(u))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// Marshal encodes the mesh.
func (m *Mesh) Marshal() []byte {
	var b []byte
	b = appendFloats(b, fieldPositions, m.Positions)
	b = appendFloats(b, fieldNormals, m.Normals)
	b = appendFloats(b, fieldUVs, m.UVs)
	b = appendFloats(b, fieldLightmapUVs, m.LightmapUVs)
	b = appendUint32s(b, fieldLightmapInfo, m.LightmapInfo)
	for _, batch := range m.Batches {
		var bb []byte
		bb = protowire.AppendTag(bb, fieldBatchTexture, protowire.BytesType)
		bb = protowire.AppendString(bb, batch.Texture)
		bb = appendUint32s(bb, fieldBatchIndices, batch.Indices)

		b = protowire.AppendTag(b, fieldBatches, protowire.BytesType)
		b = protowire.AppendBytes(b, bb)
	}
	return b
}

var errTruncated = errors.New("truncated mesh")

// consume reads one field, calling f for length delimited ones. Other wire types are skipped.
func consume(b []byte, f func(protowire.Number, []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("reading tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("skipping field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return fmt.Errorf("reading field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := f(num, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errTruncated
	}
	ret := make([]float32, 0, len(b)/4)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		ret = append(ret, math.Float32frombits(v))
		b = b[n:]
	}
	return ret, nil
}

func decodeUint32s(b []byte) ([]uint32, error) {
	var ret []uint32
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		ret = append(ret, uint32(v))
		b = b[n:]
	}
	return ret, nil
}

// UnmarshalMesh decodes a mesh. Unknown fields are ignored.
func UnmarshalMesh(b []byte) (*Mesh, error) {
	m := &Mesh{}
	err := consume(b, func(num protowire.Number, v []byte) error {
		var err error
		switch num {
		case fieldPositions:
			m.Positions, err = decodeFloats(v)
		case fieldNormals:
			m.Normals, err = decodeFloats(v)
		case fieldUVs:
			m.UVs, err = decodeFloats(v)
		case fieldLightmapUVs:
			m.LightmapUVs, err = decodeFloats(v)
		case fieldLightmapInfo:
			m.LightmapInfo, err = decodeUint32s(v)
		case fieldBatches:
			var batch bsp.Batch
			err = consume(v, func(num protowire.Number, v []byte) error {
				var err error
				switch num {
				case fieldBatchTexture:
					batch.Texture = string(v)
				case fieldBatchIndices:
					batch.Indices, err = decodeUint32s(v)
				}
				return err
			})
			m.Batches = append(m.Batches, batch)
		}
		if err != nil {
			return fmt.Errorf("mesh field %d: %w", num, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
