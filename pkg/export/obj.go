// Package export writes map geometry in formats other programs can read.
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
// * http://paulbourke.net/dataformats/obj/
// * http://paulbourke.net/dataformats/mtl/
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

// Options change the coordinate system of the output.
type Options struct {
	// Scale multiplies all positions. Zero means 1.
	Scale float32

	// YUp turns the Z-up map coordinates into Y-up, which most modelling tools want.
	YUp bool
}

func (o *Options) position(v mgl32.Vec3) mgl32.Vec3 {
	s := o.Scale
	if s == 0 {
		s = 1
	}
	return o.axes(v.Mul(s))
}

func (o *Options) axes(v mgl32.Vec3) mgl32.Vec3 {
	if o.YUp {
		return mgl32.Vec3{v[0], v[2], -v[1]}
	}
	return v
}

// WriteOBJ writes the batches of a geometry as a Wavefront OBJ file.
// Every batch gets a "usemtl" with the texture name. If mtllib is not
// empty, a reference to that material library is added.
func WriteOBJ(w io.Writer, g *bsp.Geometry, batches []bsp.Batch, mtllib string, opts Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d textures\n", len(g.Vertices), len(batches))
	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtllib)
	}
	for _, v := range g.Vertices {
		p := opts.position(v.Position)
		fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
	}
	for _, v := range g.Vertices {
		// OBJ has V going up, the map has it going down.
		fmt.Fprintf(bw, "vt %g %g\n", v.UV[0], -v.UV[1])
	}
	for _, v := range g.Vertices {
		n := opts.axes(v.Normal)
		fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
	}
	for _, b := range batches {
		fmt.Fprintf(bw, "\ng %s\nusemtl %s\n", b.Texture, b.Texture)
		for i := 0; i+2 < len(b.Indices); i += 3 {
			fmt.Fprint(bw, "f")
			for _, idx := range b.Indices[i : i+3] {
				// OBJ indices start at 1.
				n := idx + 1
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

// WriteMTL writes a material library where material X uses the image <dir>/X.<ext>.
func WriteMTL(w io.Writer, names []string, dir, ext string) error {
	bw := bufio.NewWriter(w)
	for _, n := range names {
		fmt.Fprintf(bw, "newmtl %s\nKd 1 1 1\nmap_Kd %s/%s.%s\n\n", n, dir, n, ext)
	}
	return bw.Flush()
}
