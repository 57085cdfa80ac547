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
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Image formats understood by EncodeImage.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// EncodeImage writes img as png or webp.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding webp: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown image format %q", format)
}

// Scale resizes img by factor. A factor of 1 or less than or equal to zero
// returns img unchanged.
func Scale(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
