package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ThomasHabets/hlbsp/internal/fixture"
	"github.com/ThomasHabets/hlbsp/pkg/wad"
)

func testArchive(t *testing.T) *wad.Archive {
	t.Helper()
	a, err := wad.Parse(fixture.WAD(
		fixture.WADEntry{Name: "CRATE", Data: fixture.Miptex("CRATE", 32, 16, 1, true)},
		fixture.WADEntry{Name: "EMPTY", Data: fixture.Miptex("EMPTY", 16, 16, 1, false)},
		fixture.WADEntry{Name: "PAL", Type: wad.TypePalette, Data: []byte{1, 2, 3}},
	))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	if err := list(&buf, testArchive(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got, want := len(lines), 4; got != want {
		t.Fatalf("got %d lines, want %d:\n%s", got, want, buf.String())
	}
	if !strings.HasPrefix(lines[1], "CRATE ") {
		t.Errorf("got %q, want CRATE first", lines[1])
	}
}

func TestExtract(t *testing.T) {
	*outDir = t.TempDir()
	a := testArchive(t)
	if err := extract(a, "CRATE"); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(*outDir, "CRATE.png"))
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

	if err := extract(a, "PAL"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(*outDir, "PAL.lmp"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := b, []byte{1, 2, 3}; !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, name := range []string{"EMPTY", "NOPE"} {
		if err := extract(a, name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
