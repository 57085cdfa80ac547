package bsp

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
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	coordRE        = regexp.MustCompile(`^(-?[0-9.e+-]+)\s+(-?[0-9.e+-]+)\s+(-?[0-9.e+-]+)$`)
	entityKeyValRE = regexp.MustCompile(`^"([^"]*)"\s*"([^"]*)"$`)
)

// An Entity is a thing in the map that's not world geometry.
// Lights, start points, doors, the world itself, and so on.
type Entity struct {
	EntityID int
	Data     map[string]string
}

// Entities is every entity in a map, in file order.
type Entities []Entity

// ClassName returns the entity class, e.g. "info_player_start".
func (e *Entity) ClassName() string {
	return e.Data["classname"]
}

// Origin returns the position of the entity, if it has one.
func (e *Entity) Origin() (mgl32.Vec3, bool) {
	s, found := e.Data["origin"]
	if !found {
		return mgl32.Vec3{}, false
	}
	v, err := parseVertex(s)
	if err != nil {
		return mgl32.Vec3{}, false
	}
	return v, true
}

func parseFloat32(s string) (float32, error) {
	t, err := strconv.ParseFloat(s, 32)
	return float32(t), err
}

func parseVertex(s string) (mgl32.Vec3, error) {
	m := coordRE.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) != 4 {
		return mgl32.Vec3{}, fmt.Errorf("vertex coord parse fail: %q", s)
	}
	var v mgl32.Vec3
	for i := range v {
		var err error
		if v[i], err = parseFloat32(m[i+1]); err != nil {
			return mgl32.Vec3{}, fmt.Errorf("vertex coord parse fail: %q", s)
		}
	}
	return v, nil
}

// ParseEntities parses the entities text. It's a list of key values per entity.
// E.g.:
//
//	{
//	"classname" "worldspawn"
//	"skyname" "desert"
//	}
//	{
//	"classname" "info_player_start"
//	"origin" "1 2 3"
//	}
func ParseEntities(in string) (Entities, error) {
	scanner := bufio.NewScanner(strings.NewReader(in))
	// Values such as "wad" lists can be longer than the default token size.
	scanner.Buffer(nil, len(in)+bufio.MaxScanTokenSize)
	next := func() (string, bool) {
		for scanner.Scan() {
			if s := strings.TrimSpace(scanner.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}

	var ents Entities
	for {
		line, ok := next()
		if !ok {
			break
		}
		if line != "{" {
			return nil, fmt.Errorf("entity %d: parse error, expected '{', got %q", len(ents), line)
		}
		ent := Entity{
			EntityID: len(ents),
			Data:     make(map[string]string),
		}
		for {
			line, ok := next()
			if !ok {
				return nil, fmt.Errorf("entity %d: unexpected EOF or error: %v", len(ents), scanner.Err())
			}
			if line == "}" {
				break
			}
			m := entityKeyValRE.FindStringSubmatch(line)
			if len(m) != 3 {
				return nil, fmt.Errorf("entity %d: parse error on %q", len(ents), line)
			}
			ent.Data[m[1]] = m[2]
		}
		ents = append(ents, ent)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ents, nil
}

// FindByClass returns all entities of a given class.
func (es Entities) FindByClass(class string) []Entity {
	var ret []Entity
	for _, e := range es {
		if e.ClassName() == class {
			ret = append(ret, e)
		}
	}
	return ret
}

// StartPoint returns the origin of the first player start.
func (es Entities) StartPoint() (mgl32.Vec3, bool) {
	for _, e := range es.FindByClass("info_player_start") {
		if v, ok := e.Origin(); ok {
			return v, true
		}
	}
	return mgl32.Vec3{}, false
}

// SkyName returns the name of the skybox set on the world, or "" if none is set.
func (es Entities) SkyName() string {
	for _, e := range es.FindByClass("worldspawn") {
		if s := e.Data["skyname"]; s != "" {
			return s
		}
	}
	return ""
}

// WADs returns the base names of the WAD files the world says it uses, in order.
// The map compiler stores them as full paths on the mapper's machine, e.g.
// "\half-life\valve\halflife.wad;\half-life\valve\decals.wad".
func (es Entities) WADs() []string {
	var ret []string
	for _, e := range es.FindByClass("worldspawn") {
		for _, p := range strings.Split(e.Data["wad"], ";") {
			p = strings.TrimSpace(p)
			if n := strings.LastIndexAny(p, `\/`); n >= 0 {
				p = p[n+1:]
			}
			if p != "" {
				ret = append(ret, p)
			}
		}
	}
	return ret
}
