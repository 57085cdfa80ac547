package miptex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/ThomasHabets/hlbsp/pkg/binfmt"
)

const blueIndex = 255

// build makes a miptex record. Palette index i is (i, i, i), except blueIndex which is pure blue.
// Every pixel of mip level n is n, and pixel 0 of level 0 is blue.
func build(t *testing.T, name string, w, h uint32, offsets bool) []byte {
	t.Helper()
	hdr := RawHeader{Width: w, Height: h}
	copy(hdr.NameBytes[:], name)
	var pix []byte
	if offsets {
		o := uint32(fileHeaderSize)
		for i := uint32(0); i < MipLevels; i++ {
			hdr.Offsets[i] = o
			n := (w * h) >> (2 * i)
			pix = append(pix, bytes.Repeat([]byte{byte(i)}, int(n))...)
			o += n
		}
		pix[0] = blueIndex
		pix = append(pix, 0, 0)
		for i := 0; i < 256; i++ {
			if i == blueIndex {
				pix = append(pix, 0, 0, 255)
				continue
			}
			pix = append(pix, byte(i), byte(i), byte(i))
		}
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	buf.Write(pix)
	return buf.Bytes()
}

func TestSizes(t *testing.T) {
	typ := reflect.TypeOf(RawHeader{})
	if got, want := int(typ.Size()), fileHeaderSize; got != want {
		t.Errorf("Size of %q: got %v, want %v", typ.Name(), got, want)
	}
	if fileHeaderSize != 40 {
		t.Errorf("got header size %d, want 40", fileHeaderSize)
	}
}

func TestDecode(t *testing.T) {
	m, err := Decode(build(t, "CRATE1", 16, 8, true), 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "CRATE1" || m.Width != 16 || m.Height != 8 {
		t.Errorf("got %q %dx%d", m.Name, m.Width, m.Height)
	}
	p, ok := m.Data.(*Present)
	if !ok {
		t.Fatalf("got %T, want *Present", m.Data)
	}
	for i, want := range []int{128, 32, 8, 2} {
		if got := len(p.Mips[i]); got != want {
			t.Errorf("mip %d: got %d bytes, want %d", i, got, want)
		}
	}
	if got, want := p.Mips[3][1], byte(3); got != want {
		t.Errorf("mip 3: got index %d, want %d", got, want)
	}
	if got, want := len(p.Palette), paletteSize; got != want {
		t.Errorf("palette: got %d bytes, want %d", got, want)
	}

	pix, ok := m.Pixels(1)
	if !ok {
		t.Fatal("no pixels")
	}
	if got, want := len(pix), 8*4*4; got != want {
		t.Errorf("got %d bytes, want %d", got, want)
	}
	if want := []byte{1, 1, 1, 255}; !bytes.Equal(pix[:4], want) {
		t.Errorf("got %v, want %v", pix[:4], want)
	}
	if _, ok := m.Pixels(MipLevels); ok {
		t.Errorf("got pixels for mip level %d", MipLevels)
	}
}

func TestDecodeBase(t *testing.T) {
	rec := build(t, "BASE", 16, 16, true)
	data := append(make([]byte, 100), rec...)
	m, err := Decode(data, 100)
	if err != nil {
		t.Fatal(err)
	}
	if m.Absent() || m.Name != "BASE" {
		t.Errorf("got %q absent=%v", m.Name, m.Absent())
	}
}

func TestAbsent(t *testing.T) {
	full := build(t, "ABSENT", 16, 16, true)
	for i := 0; i < MipLevels; i++ {
		b := append([]byte{}, full...)
		binary.LittleEndian.PutUint32(b[binfmt.NameSize+8+i*4:], 0)
		m, err := Decode(b, 0)
		if err != nil {
			t.Fatalf("offset %d zero: %v", i, err)
		}
		if !m.Absent() {
			t.Errorf("offset %d zero: not absent", i)
		}
		if _, ok := m.Data.(Absent); !ok {
			t.Errorf("offset %d zero: got %T, want Absent", i, m.Data)
		}
		for level := 0; level < MipLevels; level++ {
			if _, ok := m.Pixels(level); ok {
				t.Errorf("offset %d zero: got pixels for level %d", i, level)
			}
			if _, ok := m.Image(level); ok {
				t.Errorf("offset %d zero: got image for level %d", i, level)
			}
		}
	}

	// Header only, as embedded in a BSP that uses a WAD.
	m, err := Decode(build(t, "HDRONLY", 64, 64, false), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Absent() || m.Width != 64 {
		t.Errorf("got absent=%v width=%d", m.Absent(), m.Width)
	}
}

func TestTransparency(t *testing.T) {
	for _, test := range []struct {
		name  string
		alpha byte
	}{
		{"{FENCE", 0},
		{"FENCE", 255},
		{"!WATER", 255},
	} {
		m, err := Decode(build(t, test.name, 16, 16, true), 0)
		if err != nil {
			t.Fatal(err)
		}
		pix, ok := m.Pixels(0)
		if !ok {
			t.Fatalf("%q: no pixels", test.name)
		}
		if want := []byte{0, 0, 255, test.alpha}; !bytes.Equal(pix[:4], want) {
			t.Errorf("%q: got %v, want %v", test.name, pix[:4], want)
		}
		// Non-blue pixels are always opaque.
		if got := pix[7]; got != 255 {
			t.Errorf("%q: got alpha %d for non-blue", test.name, got)
		}
	}
}

func TestImage(t *testing.T) {
	m, err := Decode(build(t, "{GRATE", 16, 8, true), 0)
	if err != nil {
		t.Fatal(err)
	}
	img, ok := m.Image(0)
	if !ok {
		t.Fatal("no image")
	}
	if got, want := img.Bounds().Dx(), 16; got != want {
		t.Errorf("width: got %d, want %d", got, want)
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 || got.B != 255 {
		t.Errorf("got %v, want transparent blue", got)
	}
	if got := img.NRGBAAt(15, 7); got.A != 255 {
		t.Errorf("got %v, want opaque", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	good := build(t, "TRUNC", 16, 16, true)
	for _, test := range []struct {
		name string
		data []byte
		base int
		want error
	}{
		{"short header", good[:39], 0, binfmt.ErrOutOfBounds},
		{"base past end", good, len(good), binfmt.ErrOutOfBounds},
		{"negative base", good, -1, binfmt.ErrOutOfBounds},
		{"no palette", good[:len(good)-1], 0, binfmt.ErrOutOfBounds},
		{"bad name", append([]byte{0xff, 0xfe}, good[2:]...), 0, binfmt.ErrInvalidName},
	} {
		if _, err := Decode(test.data, test.base); !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
		}
	}
}
