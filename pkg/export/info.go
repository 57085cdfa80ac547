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

import (
	"encoding/json"
	"io"

	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

// TextureInfo describes one texture in the texture directory.
type TextureInfo struct {
	Name     string `json:"name"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	Embedded bool   `json:"embedded"`
}

// ModelInfo describes one model.
type ModelInfo struct {
	Faces  uint32     `json:"faces"`
	Origin [3]float32 `json:"origin"`
	Mins   [3]float32 `json:"mins"`
	Maxs   [3]float32 `json:"maxs"`
}

// Info is a summary of a map.
type Info struct {
	Name          string        `json:"name,omitempty"`
	Vertices      int           `json:"vertices"`
	Edges         int           `json:"edges"`
	Faces         int           `json:"faces"`
	Planes        int           `json:"planes"`
	TexInfos      int           `json:"texinfos"`
	LightmapBytes int           `json:"lightmap_bytes"`
	Entities      int           `json:"entities"`
	SkyName       string        `json:"sky_name,omitempty"`
	StartPoint    *[3]float32   `json:"start_point,omitempty"`
	WADs          []string      `json:"wads,omitempty"`
	Models        []ModelInfo   `json:"models"`
	Textures      []TextureInfo `json:"textures"`
}

// NewInfo summarizes a map. Entities that fail to parse are not counted.
func NewInfo(name string, m *bsp.Map) *Info {
	info := &Info{
		Name:          name,
		Vertices:      len(m.Vertices),
		Edges:         len(m.Edges),
		Faces:         len(m.Faces),
		Planes:        len(m.Planes),
		TexInfos:      len(m.TexInfos),
		LightmapBytes: len(m.Lighting),
		Models:        []ModelInfo{},
		Textures:      []TextureInfo{},
	}
	if ents, err := m.ParseEntities(); err == nil {
		info.Entities = len(ents)
		info.SkyName = ents.SkyName()
		info.WADs = ents.WADs()
		if p, ok := ents.StartPoint(); ok {
			sp := [3]float32(p)
			info.StartPoint = &sp
		}
	}
	for _, mod := range m.Models {
		info.Models = append(info.Models, ModelInfo{
			Faces:  mod.NumFaces,
			Origin: mod.Origin,
			Mins:   mod.Mins,
			Maxs:   mod.Maxs,
		})
	}
	for _, t := range m.Textures {
		info.Textures = append(info.Textures, TextureInfo{
			Name:     t.Name,
			Width:    t.Width,
			Height:   t.Height,
			Embedded: !t.Absent(),
		})
	}
	return info
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
