// Package skybox loads the six TGA images that make up a Half-Life sky.
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
package skybox

import (
	"fmt"
	"image"
	"io/fs"

	_ "github.com/ftrvxmtrx/tga" // Register TGA with image.Decode.
	"golang.org/x/image/draw"
)

// Sides are the file name suffixes, in cubemap order.
var Sides = [6]string{"rt", "lf", "up", "dn", "bk", "ft"}

const extension = ".tga"

// Cubemap is a loaded sky.
type Cubemap struct {
	Name  string
	Size  int // Width and height of every side.
	Sides [6]*image.NRGBA
}

// FileName returns the file name of one side of a sky.
func FileName(sky string, side int) string {
	return sky + Sides[side] + extension
}

// Load reads <sky>rt.tga, <sky>lf.tga, and so on from fsys.
// Every side must be square, and all must be the same size.
func Load(fsys fs.FS, sky string) (*Cubemap, error) {
	c := &Cubemap{Name: sky}
	for i := range Sides {
		fn := FileName(sky, i)
		img, err := loadSide(fsys, fn)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("sky side %q is %dx%d, not square", fn, b.Dx(), b.Dy())
		}
		if i == 0 {
			c.Size = b.Dx()
		} else if b.Dx() != c.Size {
			return nil, fmt.Errorf("sky side %q is %d wide, others are %d", fn, b.Dx(), c.Size)
		}
		c.Sides[i] = img
	}
	return c, nil
}

func loadSide(fsys fs.FS, fn string) (*image.NRGBA, error) {
	f, err := fsys.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("opening sky side: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding sky side %q: %w", fn, err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
