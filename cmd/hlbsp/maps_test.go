package main

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

func TestWADPaths(t *testing.T) {
	e := testEnv(t)
	e.cfg.WADs = []string{"first.wad"}
	l, err := e.loadLevel(context.Background(), filepath.Join(e.cfg.Serve.Maps, "quad.bsp"))
	if err != nil {
		t.Fatal(err)
	}
	got := e.wadPaths(l)
	want := []string{
		"first.wad",
		filepath.Join(e.cfg.Serve.Maps, "halflife.wad"),
		filepath.Join(e.cfg.Serve.Maps, "..", "halflife.wad"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTexturesFromWAD(t *testing.T) {
	e := testEnv(t)
	l, err := e.loadLevel(context.Background(), filepath.Join(e.cfg.Serve.Maps, "external.bsp"))
	if err != nil {
		t.Fatal(err)
	}
	tm, err := e.textures(context.Background(), l, []string{"CRATE", "MISSING"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tm.Missing([]string{"CRATE", "MISSING"}), []string{"MISSING"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTexturesBadWAD(t *testing.T) {
	e := testEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.wad")
	if err := os.WriteFile(bad, []byte("WAD2 not really"), 0644); err != nil {
		t.Fatal(err)
	}
	e.cfg.WADs = []string{bad}
	l, err := e.loadLevel(context.Background(), filepath.Join(e.cfg.Serve.Maps, "external.bsp"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.textures(context.Background(), l, []string{"CRATE"}); !errors.Is(err, binfmt.ErrVersionMismatch) {
		t.Errorf("got %v, want %v", err, binfmt.ErrVersionMismatch)
	}
}

func TestWriteTextures(t *testing.T) {
	e := testEnv(t)
	e.cfg.Export.Scale = 2
	l, err := e.loadLevel(context.Background(), filepath.Join(e.cfg.Serve.Maps, "quad.bsp"))
	if err != nil {
		t.Fatal(err)
	}
	tm, err := e.textures(context.Background(), l, []string{"WALL"})
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "textures")
	n, err := e.writeTextures(dir, tm, []string{"WALL", "NOPE"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := n, 1; got != want {
		t.Errorf("wrote %d, want %d", got, want)
	}
	f, err := os.Open(filepath.Join(dir, "WALL.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Bounds().Dx(), 32; got != want {
		t.Errorf("got width %d, want %d", got, want)
	}
}
