package main

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

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/hlbsp/pkg/atlas"
	"github.com/ThomasHabets/hlbsp/pkg/bsp"
	"github.com/ThomasHabets/hlbsp/pkg/export"
	"github.com/ThomasHabets/hlbsp/pkg/skybox"
	"github.com/ThomasHabets/hlbsp/pkg/texture"
)

const texturesDir = "textures"

func newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global options] %s [options] %s\n", os.Args[0], name, args)
		fs.PrintDefaults()
	}
	return fs
}

// writeFile creates fn and calls f to fill it in. On failure the file is removed.
func writeFile(fn string, f func(io.Writer) error) error {
	of, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := f(of); err != nil {
		of.Close()
		os.Remove(fn)
		return fmt.Errorf("writing %q: %w", fn, err)
	}
	if err := of.Close(); err != nil {
		os.Remove(fn)
		return fmt.Errorf("closing %q: %w", fn, err)
	}
	return nil
}

// writeImage writes img scaled and encoded as configured, as <base>.<format>.
func (e *env) writeImage(base string, img *image.NRGBA) (string, error) {
	fn := base + "." + e.cfg.Export.Format
	img = export.Scale(img, e.cfg.Export.Scale)
	return fn, writeFile(fn, func(w io.Writer) error {
		return export.EncodeImage(w, img, e.cfg.Export.Format)
	})
}

// writeTextures writes the named textures that are in tm to dir.
// Returns the number written.
func (e *env) writeTextures(dir string, tm texture.Map, names []string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	n := 0
	for _, name := range names {
		t, found := tm.Get(name)
		if !found {
			continue
		}
		img, ok := t.Image(0)
		if !ok {
			continue
		}
		// Written under the name the map uses, so it matches the materials.
		if _, err := e.writeImage(filepath.Join(dir, name), img); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (e *env) mustLoad(ctx context.Context, fs *flag.FlagSet) *level {
	if fs.NArg() != 1 {
		fs.Usage()
		log.Fatalf("Need to specify exactly one map.")
	}
	l, err := e.loadLevel(ctx, fs.Arg(0))
	if err != nil {
		log.Fatalf("Loading map: %v", err)
	}
	return l
}

func mustGeometry(l *level, model int) *bsp.Geometry {
	g, err := l.m.ModelGeometry(model)
	if err != nil {
		log.Fatalf("Building geometry of model %d of %q: %v", model, l.path, err)
	}
	return g
}

func info(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("info", "<map.bsp> [<map.bsp>...]")
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		log.Fatalf("Need to specify a map.")
	}
	for _, fn := range fs.Args() {
		l, err := e.loadLevel(ctx, fn)
		if err != nil {
			log.Fatalf("Loading map: %v", err)
		}
		if err := export.WriteJSON(os.Stdout, export.NewInfo(l.name, l.m)); err != nil {
			log.Fatalf("Writing info: %v", err)
		}
	}
}

func entities(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("entities", "<map.bsp>")
	class := fs.String("class", "", "Only print entities of this class.")
	fs.Parse(args)
	l := e.mustLoad(ctx, fs)
	ents, err := l.m.ParseEntities()
	if err != nil {
		log.Fatalf("Parsing entities: %v", err)
	}
	if *class != "" {
		ents = ents.FindByClass(*class)
	}
	out := make([]map[string]string, 0, len(ents))
	for _, ent := range ents {
		out = append(out, ent.Data)
	}
	if err := export.WriteJSON(os.Stdout, out); err != nil {
		log.Fatalf("Writing entities: %v", err)
	}
}

func obj(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("obj", "<map.bsp>")
	outDir := fs.String("out", ".", "Output directory.")
	model := fs.Int("model", 0, "Model to write. 0 is the world.")
	scale := fs.Float64("geometry_scale", 1, "Multiply positions by this.")
	yUp := fs.Bool("y_up", true, "Make Y the up axis.")
	withTextures := fs.Bool("textures", true, "Also write materials and texture images.")
	fs.Parse(args)
	l := e.mustLoad(ctx, fs)

	g := mustGeometry(l, *model)
	batches := g.Batches()
	names := bsp.TextureNames(batches)
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}

	var mtllib string
	if *withTextures {
		mtllib = l.name + ".mtl"
		if err := writeFile(filepath.Join(*outDir, mtllib), func(w io.Writer) error {
			return export.WriteMTL(w, names, texturesDir, e.cfg.Export.Format)
		}); err != nil {
			log.Fatalf("Writing materials: %v", err)
		}
		tm, err := e.textures(ctx, l, names)
		if err != nil {
			log.Fatalf("Resolving textures: %v", err)
		}
		n, err := e.writeTextures(filepath.Join(*outDir, texturesDir), tm, names)
		if err != nil {
			log.Fatalf("Writing textures: %v", err)
		}
		log.Infof("Wrote %d of %d textures", n, len(names))
	}

	fn := filepath.Join(*outDir, l.name+".obj")
	opts := export.Options{Scale: float32(*scale), YUp: *yUp}
	if err := writeFile(fn, func(w io.Writer) error {
		return export.WriteOBJ(w, g, batches, mtllib, opts)
	}); err != nil {
		log.Fatalf("Writing OBJ: %v", err)
	}
	log.Infof("Wrote %q: %d vertices, %d faces, %d textures", fn, len(g.Vertices), len(g.Faces), len(batches))
}

func mesh(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("mesh", "<map.bsp>")
	out := fs.String("out", "", "Output file. Default is <map>.mesh.")
	model := fs.Int("model", 0, "Model to write. 0 is the world.")
	scale := fs.Float64("geometry_scale", 1, "Multiply positions by this.")
	yUp := fs.Bool("y_up", false, "Make Y the up axis.")
	fs.Parse(args)
	l := e.mustLoad(ctx, fs)

	g := mustGeometry(l, *model)
	fn := *out
	if fn == "" {
		fn = l.name + ".mesh"
	}
	m := export.NewMesh(g, g.Batches(), export.Options{Scale: float32(*scale), YUp: *yUp})
	if err := writeFile(fn, func(w io.Writer) error {
		_, err := w.Write(m.Marshal())
		return err
	}); err != nil {
		log.Fatalf("Writing mesh: %v", err)
	}
	log.Infof("Wrote %q: %d vertices, %d batches", fn, len(g.Vertices), len(m.Batches))
}

func textures(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("textures", "<map.bsp>")
	outDir := fs.String("out", texturesDir, "Output directory.")
	all := fs.Bool("all", false, "Write every texture in the map, not just the ones the world draws.")
	fs.Parse(args)
	l := e.mustLoad(ctx, fs)

	var names []string
	if *all {
		names = allTextureNames(l.m)
	} else {
		names = bsp.TextureNames(mustGeometry(l, 0).Batches())
	}
	tm, err := e.textures(ctx, l, names)
	if err != nil {
		log.Fatalf("Resolving textures: %v", err)
	}
	n, err := e.writeTextures(*outDir, tm, names)
	if err != nil {
		log.Fatalf("Writing textures: %v", err)
	}
	log.Infof("Wrote %d of %d textures to %q", n, len(names), *outDir)
}

func lightmap(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("lightmap", "<map.bsp>")
	out := fs.String("out", "", "Output file, without extension. Default is <map>_lightmap.")
	model := fs.Int("model", 0, "Model to pack. 0 is the world.")
	fs.Parse(args)
	l := e.mustLoad(ctx, fs)

	g := mustGeometry(l, *model)
	img, _, err := atlas.Lightmap(g.Faces, bsp.LightmapTexels(l.m.Lighting))
	if err != nil {
		log.Fatalf("Packing lightmaps: %v", err)
	}
	base := *out
	if base == "" {
		base = l.name + "_lightmap"
	}
	fn, err := e.writeImage(base, img)
	if err != nil {
		log.Fatalf("Writing lightmap: %v", err)
	}
	log.Infof("Wrote %q, %dx%d", fn, img.Bounds().Dx(), img.Bounds().Dy())
}

func sky(ctx context.Context, e *env, args ...string) {
	fs := newFlagSet("skybox", "<map.bsp>")
	outDir := fs.String("out", ".", "Output directory.")
	skyName := fs.String("sky", "", "Sky name. Default is the one the map uses.")
	fs.Parse(args)
	if e.cfg.SkyboxDir == "" {
		log.Fatalf("Need -skybox_dir or skybox_dir in the config.")
	}
	name := *skyName
	if name == "" {
		l := e.mustLoad(ctx, fs)
		if name = l.ents.SkyName(); name == "" {
			log.Fatalf("Map %q doesn't set a sky.", l.path)
		}
	}
	c, err := skybox.Load(os.DirFS(e.cfg.SkyboxDir), name)
	if err != nil {
		log.Fatalf("Loading sky %q: %v", name, err)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}
	for i, side := range c.Sides {
		if _, err := e.writeImage(filepath.Join(*outDir, c.Name+skybox.Sides[i]), side); err != nil {
			log.Fatalf("Writing sky side: %v", err)
		}
	}
	log.Infof("Wrote sky %q, %d pixels per side", c.Name, c.Size)
}

func printConfig(ctx context.Context, e *env, args ...string) {
	if err := e.cfg.Write(os.Stdout); err != nil {
		log.Fatalf("Writing config: %v", err)
	}
}
