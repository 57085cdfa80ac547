// wad lists and extracts the entries of WAD3 texture archives.
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
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/hlbsp/pkg/export"
	"github.com/ThomasHabets/hlbsp/pkg/source"
	"github.com/ThomasHabets/hlbsp/pkg/wad"
)

var (
	outDir           = flag.String("out", ".", "Directory to extract to.")
	format           = flag.String("format", export.FormatPNG, "Image format for textures: png or webp.")
	raw              = flag.Bool("raw", false, "Extract entries as stored instead of converting textures to images.")
	cloudCredentials = flag.String("cloud_credentials", "", "Path to JSON file containing credentials, for gs:// paths.")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.wad> command [command args...]\nCommands:\n  list\n  extract <name> [<name>...]\nOptions:\n", os.Args[0])
	flag.PrintDefaults()
}

func list(w io.Writer, a *wad.Archive) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "Name\tType\tSize\n")
	for _, e := range a.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.TypeName(), e.Size)
	}
	return tw.Flush()
}

// extract writes one entry. Textures become images, unless raw is set.
func extract(a *wad.Archive, name string) error {
	e, found := a.Get(name)
	if !found {
		return fmt.Errorf("no entry %q", name)
	}
	if *raw || e.Type != wad.TypeMipTex {
		return os.WriteFile(filepath.Join(*outDir, name+".lmp"), e.Data, 0644)
	}
	t, err := e.MipTex()
	if err != nil {
		return err
	}
	img, ok := t.Image(0)
	if !ok {
		return fmt.Errorf("texture %q has no pixels", name)
	}
	fn := filepath.Join(*outDir, name+"."+*format)
	of, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := export.EncodeImage(of, img, *format); err != nil {
		of.Close()
		os.Remove(fn)
		return err
	}
	return of.Close()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(1)
	}

	src := source.New(nil, *cloudCredentials)
	defer src.Close()
	b, err := src.ReadFile(context.Background(), flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	a, err := wad.Parse(b)
	if err != nil {
		log.Fatalf("Parsing %q: %v", flag.Arg(0), err)
	}
	a.Name = flag.Arg(0)

	switch flag.Arg(1) {
	case "list":
		if err := list(os.Stdout, a); err != nil {
			log.Fatal(err)
		}
	case "extract":
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			log.Fatal(err)
		}
		for _, name := range flag.Args()[2:] {
			if err := extract(a, name); err != nil {
				log.Fatalf("Failed to extract %q: %v", name, err)
			}
		}
	default:
		log.Fatalf("Unknown command %q", flag.Arg(1))
	}
}
