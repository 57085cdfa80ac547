package atlas

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
	"image"

	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

// Lightmap packs the lightmap block of every lit face into one sheet.
// texels is RGBA, as returned by bsp.LightmapTexels.
// The returned rectangles are per face, and empty for faces without a lightmap.
// Blocks that run past the end of texels are cut short.
func Lightmap(faces []bsp.Face, texels []byte) (*image.NRGBA, []image.Rectangle, error) {
	sizes := make([]image.Point, len(faces))
	for i, f := range faces {
		if f.HasLightmap {
			sizes[i] = image.Pt(int(f.LightmapSize[0]), int(f.LightmapSize[1]))
		}
	}
	rects, side, err := Pack(sizes)
	if err != nil {
		return nil, nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	numTexels := len(texels) / 4
	for i, f := range faces {
		r := rects[i]
		if r.Empty() {
			continue
		}
		w := r.Dx()
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < w; x++ {
				t := int(f.LightmapOffset) + y*w + x
				if t >= numTexels {
					continue
				}
				o := img.PixOffset(r.Min.X+x, r.Min.Y+y)
				copy(img.Pix[o:o+4], texels[t*4:t*4+4])
			}
		}
	}
	return img, rects, nil
}
