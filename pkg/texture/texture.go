// Package texture collects the textures a map needs, from the map itself and from WAD archives.
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
package texture

import (
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ThomasHabets/hlbsp/pkg/miptex"
	"github.com/ThomasHabets/hlbsp/pkg/wad"
)

// Map is textures by lowercase name. Only textures with pixels are stored.
//
// Entries are only ever added, never replaced or removed. A Map is not safe
// for concurrent modification. Use one per goroutine and Merge them.
type Map map[string]*miptex.MipTexture

func key(name string) string {
	return strings.ToLower(name)
}

// NewMap returns a map with the textures that have pixels.
func NewMap(embedded []*miptex.MipTexture) Map {
	m := make(Map)
	for _, t := range embedded {
		m.add(t)
	}
	return m
}

// add inserts a texture, unless it's absent or the name is already taken.
func (m Map) add(t *miptex.MipTexture) bool {
	if t == nil || t.Absent() {
		return false
	}
	k := key(t.Name)
	if _, found := m[k]; found {
		return false
	}
	m[k] = t
	return true
}

// Get returns a texture, ignoring case.
func (m Map) Get(name string) (*miptex.MipTexture, bool) {
	t, found := m[key(name)]
	return t, found
}

// Missing returns the required names not in the map, in required order without duplicates.
func (m Map) Missing(required []string) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, name := range required {
		k := key(name)
		if seen[k] {
			continue
		}
		seen[k] = true
		if _, found := m[k]; !found {
			ret = append(ret, name)
		}
	}
	return ret
}

// Complete returns true if every required texture is in the map.
func (m Map) Complete(required []string) bool {
	return len(m.Missing(required)) == 0
}

// Merge adds all textures from other whose names are not already in m.
func (m Map) Merge(other Map) {
	for k, t := range other {
		if _, found := m[k]; !found {
			m[k] = t
		}
	}
}

// Names returns the names in the map, sorted.
func (m Map) Names() []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// lookup finds a texture in an archive. WAD names are usually upper case, but not always.
func lookup(a *wad.Archive, name string) (*wad.Entry, bool) {
	if e, ok := a.Get(strings.ToUpper(name)); ok {
		return e, true
	}
	return a.Get(strings.ToLower(name))
}

// resolveOne fills in what it can from one archive, and returns what's still missing.
func (m Map) resolveOne(missing []string, a *wad.Archive) ([]string, error) {
	var still []string
	for _, name := range missing {
		e, ok := lookup(a, name)
		if !ok {
			still = append(still, name)
			continue
		}
		t, err := e.MipTex()
		if err != nil {
			return nil, fmt.Errorf("loading %q from WAD %q: %w", name, a.Name, err)
		}
		if t.Absent() {
			still = append(still, name)
			continue
		}
		// Stored under the name that was asked for.
		m[key(name)] = t
		log.WithFields(log.Fields{
			"texture": name,
			"wad":     a.Name,
		}).Debug("Loaded external miptex")
	}
	return still, nil
}

// Resolve loads the missing required textures from the archives, in priority order.
// The first archive that has a texture wins. Textures already in the map are never
// loaded again, and it stops looking once nothing is missing.
//
// A texture that's in no archive is not an error. Use Missing to find them.
func (m Map) Resolve(required []string, archives ...*wad.Archive) error {
	missing := m.Missing(required)
	for _, a := range archives {
		if len(missing) == 0 {
			break
		}
		var err error
		if missing, err = m.resolveOne(missing, a); err != nil {
			return err
		}
	}
	return nil
}

// ResolveConcurrent is Resolve with one goroutine per archive.
// On success the result is what Resolve would give, since shards are merged in
// archive order. A bad entry in any archive is an error, even if an earlier
// archive has a good one. base is not modified.
func ResolveConcurrent(ctx context.Context, base Map, required []string, archives []*wad.Archive) (Map, error) {
	missing := base.Missing(required)
	shards := make([]Map, len(archives))
	g, ctx := errgroup.WithContext(ctx)
	for i, a := range archives {
		shards[i] = make(Map)
		if len(missing) == 0 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := shards[i].resolveOne(missing, a)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ret := make(Map, len(base))
	ret.Merge(base)
	for _, s := range shards {
		ret.Merge(s)
	}
	return ret, nil
}
