// hlbsp reads Half-Life maps and writes their geometry, textures and lightmaps
// in formats other programs can use.
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
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/hlbsp/internal/config"
	"github.com/ThomasHabets/hlbsp/internal/logging"
	"github.com/ThomasHabets/hlbsp/pkg/pak"
	"github.com/ThomasHabets/hlbsp/pkg/source"
)

var commands = []struct {
	name string
	help string
	f    func(context.Context, *env, ...string)
}{
	{"info", "Print a JSON summary of a map.", info},
	{"entities", "Print the entities of a map as JSON.", entities},
	{"obj", "Write a model as Wavefront OBJ, with materials and textures.", obj},
	{"mesh", "Write a model in the protobuf mesh format.", mesh},
	{"textures", "Write the textures a map uses as images.", textures},
	{"lightmap", "Write the lightmaps of a model packed into one image.", lightmap},
	{"skybox", "Write the six sides of the map's sky as images.", sky},
	{"serve", "Serve maps over HTTP.", serve},
	{"config", "Print the effective config.", printConfig},
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [global options] command [options]\nCommands:\n", os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.help)
	}
	fmt.Fprintf(os.Stderr, "Global options:\n")
	flag.PrintDefaults()
}

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Usage = usage
	flag.Parse()

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	closer, err := logging.Init(cfg.Logging)
	if err != nil {
		log.Fatalf("Setting up logging: %v", err)
	}
	defer closer.Close()

	if flag.NArg() == 0 {
		usage()
		log.Fatalf("Need to specify a command.")
	}

	p, err := pak.MultiOpen(cfg.Paks...)
	if err != nil {
		log.Fatalf("Opening pakfiles %q: %v", cfg.Paks, err)
	}
	e := &env{
		cfg: cfg,
		src: source.New(p, cfg.Cloud.CredentialsFile),
	}
	defer e.src.Close()

	cmd := flag.Arg(0)
	args := flag.Args()[1:]
	if cmd == "help" {
		usage()
		return
	}
	for _, c := range commands {
		if c.name == cmd {
			c.f(context.Background(), e, args...)
			return
		}
	}
	log.Fatalf("Unknown command %q", cmd)
}
