// Package atlas packs rectangles into a sheet, using the MaxRects best area fit rule.
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
// Reference:
// * Jukka Jylänki, "A Thousand Ways to Pack the Bin"
package atlas

import (
	"fmt"
	"image"
	"math"
)

// MaxSize is the largest sheet Pack will try.
const MaxSize = 8192

// A Packer places rectangles in a fixed size area.
type Packer struct {
	bounds image.Rectangle
	free   []image.Rectangle
}

// New returns an empty packer.
func New(width, height int) *Packer {
	r := image.Rect(0, 0, width, height)
	return &Packer{
		bounds: r,
		free:   []image.Rectangle{r},
	}
}

// Bounds returns the area being packed.
func (p *Packer) Bounds() image.Rectangle {
	return p.bounds
}

// Place finds room for a rectangle of the given size, or returns false if there's none.
func (p *Packer) Place(width, height int) (image.Rectangle, bool) {
	r, ok := p.findBestArea(width, height)
	if !ok {
		return image.Rectangle{}, false
	}
	p.use(r)
	return r, true
}

// findBestArea picks the free rectangle with the least area left over.
// Ties are broken by the shortest leftover side.
func (p *Packer) findBestArea(width, height int) (image.Rectangle, bool) {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, false
	}
	bestArea, bestShort := math.MaxInt, math.MaxInt
	var best image.Rectangle
	found := false
	for _, f := range p.free {
		fw, fh := f.Dx(), f.Dy()
		if width > fw || height > fh {
			continue
		}
		area := fw*fh - width*height
		short := min(fw-width, fh-height)
		if area < bestArea || (area == bestArea && short < bestShort) {
			bestArea, bestShort = area, short
			best = image.Rect(f.Min.X, f.Min.Y, f.Min.X+width, f.Min.Y+height)
			found = true
		}
	}
	return best, found
}

// use removes a placed rectangle from the free list.
func (p *Packer) use(used image.Rectangle) {
	var next []image.Rectangle
	for _, f := range p.free {
		if !f.Overlaps(used) {
			next = append(next, f)
			continue
		}
		next = append(next, split(f, used)...)
	}
	p.free = prune(next)
}

// split returns the parts of free that are not covered by used. They may overlap each other.
func split(free, used image.Rectangle) []image.Rectangle {
	var ret []image.Rectangle
	if used.Min.X < free.Max.X && used.Max.X > free.Min.X {
		if used.Min.Y > free.Min.Y && used.Min.Y < free.Max.Y {
			n := free
			n.Max.Y = used.Min.Y
			ret = append(ret, n)
		}
		if used.Max.Y < free.Max.Y {
			n := free
			n.Min.Y = used.Max.Y
			ret = append(ret, n)
		}
	}
	if used.Min.Y < free.Max.Y && used.Max.Y > free.Min.Y {
		if used.Min.X > free.Min.X && used.Min.X < free.Max.X {
			n := free
			n.Max.X = used.Min.X
			ret = append(ret, n)
		}
		if used.Max.X < free.Max.X {
			n := free
			n.Min.X = used.Max.X
			ret = append(ret, n)
		}
	}
	return ret
}

// prune removes free rectangles that are inside other free rectangles.
func prune(free []image.Rectangle) []image.Rectangle {
	var ret []image.Rectangle
	for i, a := range free {
		contained := false
		for j, b := range free {
			if i == j {
				continue
			}
			// Of two identical rectangles, keep the first.
			if a.In(b) && (a != b || j < i) {
				contained = true
				break
			}
		}
		if !contained {
			ret = append(ret, a)
		}
	}
	return ret
}

// Pack places all sizes in the smallest power of two square that fits them.
// Rectangles are returned in the same order as sizes.
func Pack(sizes []image.Point) ([]image.Rectangle, int, error) {
	area := 0
	for _, s := range sizes {
		area += s.X * s.Y
	}
	side := 1
	for side*side < area {
		side *= 2
	}
	for ; side <= MaxSize; side *= 2 {
		if ret, ok := packInto(side, sizes); ok {
			return ret, side, nil
		}
	}
	return nil, 0, fmt.Errorf("%d rectangles don't fit in %dx%d", len(sizes), MaxSize, MaxSize)
}

func packInto(side int, sizes []image.Point) ([]image.Rectangle, bool) {
	p := New(side, side)
	ret := make([]image.Rectangle, len(sizes))
	for i, s := range sizes {
		if s.X == 0 || s.Y == 0 {
			continue
		}
		r, ok := p.Place(s.X, s.Y)
		if !ok {
			return nil, false
		}
		ret[i] = r
	}
	return ret, true
}
