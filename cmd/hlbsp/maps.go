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
	"errors"
	"fmt"
	"io/fs"

	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/hlbsp/internal/config"
	"github.com/ThomasHabets/hlbsp/pkg/bsp"
	"github.com/ThomasHabets/hlbsp/pkg/source"
	"github.com/ThomasHabets/hlbsp/pkg/texture"
	"github.com/ThomasHabets/hlbsp/pkg/wad"
)

// env is what every command gets.
type env struct {
	cfg *config.Config
	src *source.Source
}

// level is a loaded map.
type level struct {
	name string // Base name, like "c1a0".
	path string
	m    *bsp.Map
	ents bsp.Entities // Empty if the entities didn't parse.
}

func (e *env) loadLevel(ctx context.Context, fn string) (*level, error) {
	b, err := e.src.ReadFile(ctx, fn)
	if err != nil {
		return nil, err
	}
	m, err := bsp.LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", fn, err)
	}
	l := &level{
		name: source.Base(fn),
		path: fn,
		m:    m,
	}
	if l.ents, err = m.ParseEntities(); err != nil {
		log.Warningf("Parsing entities of %q: %v", fn, err)
	}
	log.WithFields(log.Fields{
		"map":      fn,
		"faces":    len(m.Faces),
		"models":   len(m.Models),
		"textures": len(m.Textures),
	}).Debug("Loaded map")
	return l, nil
}

// wadPaths returns where to look for WADs, in priority order.
// Configured WADs come first. Then the ones the map names, looked for next to
// the map and in its parent directory, since maps are usually in valve/maps/.
func (e *env) wadPaths(l *level) []string {
	var ret []string
	seen := make(map[string]bool)
	add := func(fn string) {
		if !seen[fn] {
			seen[fn] = true
			ret = append(ret, fn)
		}
	}
	for _, fn := range e.cfg.WADs {
		add(fn)
	}
	dir := source.Dir(l.path)
	for _, w := range l.ents.WADs() {
		add(source.Join(dir, w))
		add(source.Join(dir, "..", w))
	}
	return ret
}

// loadWADs reads the WADs that exist. Ones that don't are skipped, but ones that
// don't parse are an error.
func (e *env) loadWADs(ctx context.Context, paths []string) ([]*wad.Archive, error) {
	var ret []*wad.Archive
	for _, fn := range paths {
		b, err := e.src.ReadFile(ctx, fn)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("WAD %q not found, skipping", fn)
			continue
		}
		if err != nil {
			return nil, err
		}
		a, err := wad.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parsing WAD %q: %w", fn, err)
		}
		a.Name = fn
		ret = append(ret, a)
	}
	return ret, nil
}

// textures returns the embedded textures, plus the required ones found in WADs.
func (e *env) textures(ctx context.Context, l *level, required []string) (texture.Map, error) {
	base := texture.NewMap(l.m.EmbeddedTextures())
	if base.Complete(required) {
		return base, nil
	}
	archives, err := e.loadWADs(ctx, e.wadPaths(l))
	if err != nil {
		return nil, err
	}
	tm, err := texture.ResolveConcurrent(ctx, base, required, archives)
	if err != nil {
		return nil, err
	}
	if missing := tm.Missing(required); len(missing) > 0 {
		log.Warningf("Textures not in the map or any of %d WADs: %q", len(archives), missing)
	}
	return tm, nil
}

// allTextureNames returns the names of every named texture in the map's texture directory.
func allTextureNames(m *bsp.Map) []string {
	var ret []string
	for _, t := range m.Textures {
		if t.Name != "" {
			ret = append(ret, t.Name)
		}
	}
	return ret
}
