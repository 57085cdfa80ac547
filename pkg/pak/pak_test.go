package pak

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

func TestSizes(t *testing.T) {
	for _, test := range []struct {
		obj  interface{}
		want int
	}{
		{fileHeader{}, 12},
		{fileEntry{}, fileEntrySize},
	} {
		typ := reflect.TypeOf(test.obj)
		got := typ.Size()
		if int(got) != test.want {
			t.Errorf("Size of %q: got %v, want %v", typ.Name(), got, test.want)
		}
	}
}

// build makes a PAK holding files in the order given.
func build(t *testing.T, files ...[2]string) []byte {
	t.Helper()
	var data bytes.Buffer
	var dir []fileEntry
	off := uint32(12)
	for _, f := range files {
		var e fileEntry
		copy(e.NameBytes[:], f[0])
		e.Offset = off
		e.Size = uint32(len(f[1]))
		dir = append(dir, e)
		data.WriteString(f[1])
		off += e.Size
	}
	var buf bytes.Buffer
	h := fileHeader{
		Directory:     off,
		DirectorySize: uint32(len(dir) * fileEntrySize),
	}
	copy(h.ID[:], magic)
	for _, v := range []interface{}{h, data.Bytes(), dir} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func TestGet(t *testing.T) {
	b := build(t, [2]string{"maps/a.bsp", "hello"}, [2]string{"halflife.wad", "world!"})
	p, err := New(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.List(), []string{"halflife.wad", "maps/a.bsp"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	r, err := p.Get("halflife.wad")
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := "world!"; string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if _, err := p.Get("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want %v", err, fs.ErrNotExist)
	}
}

func TestNewErrors(t *testing.T) {
	good := build(t, [2]string{"a", "hello"})
	badMagic := append([]byte{}, good...)
	copy(badMagic, "PAKK")
	truncated := good[:len(good)-1]
	for _, test := range []struct {
		name string
		data []byte
		want error
	}{
		{"magic", badMagic, binfmt.ErrVersionMismatch},
		{"directory", truncated, binfmt.ErrOutOfBounds},
		{"header", good[:4], io.ErrUnexpectedEOF},
	} {
		_, err := New(bytes.NewReader(test.data), int64(len(test.data)))
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
		}
	}
}

func TestMultiPak(t *testing.T) {
	dir := t.TempDir()
	var fns []string
	for i, files := range [][][2]string{
		{{"maps/a.bsp", "base"}, {"base.wad", "wad"}},
		{{"maps/a.bsp", "mod"}},
	} {
		fn := filepath.Join(dir, []string{"pak0.pak", "pak1.pak"}[i])
		if err := os.WriteFile(fn, build(t, files...), 0644); err != nil {
			t.Fatal(err)
		}
		fns = append(fns, fn)
	}
	m, err := MultiOpen(append([]string{""}, fns...)...)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if got, want := m.List(), []string{"base.wad", "maps/a.bsp"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	for _, test := range []struct {
		fn   string
		want string
	}{
		{"maps/a.bsp", "mod"},
		{"base.wad", "wad"},
	} {
		got, err := m.ReadFile(test.fn)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != test.want {
			t.Errorf("%s: got %q, want %q", test.fn, got, test.want)
		}
	}
	if _, err := m.ReadFile("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want %v", err, fs.ErrNotExist)
	}
	if _, err := MultiOpen(filepath.Join(dir, "missing.pak")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want %v", err, fs.ErrNotExist)
	}
}
