package atlas

import (
	"image"
	"math/rand"
	"testing"

	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

func checkDisjoint(t *testing.T, bounds image.Rectangle, rects []image.Rectangle) {
	t.Helper()
	for i, a := range rects {
		if a.Empty() {
			continue
		}
		if !a.In(bounds) {
			t.Errorf("rect %d %v outside %v", i, a, bounds)
		}
		for j, b := range rects[i+1:] {
			if a.Overlaps(b) {
				t.Errorf("rect %d %v overlaps rect %d %v", i, a, i+1+j, b)
			}
		}
	}
}

func TestPlace(t *testing.T) {
	p := New(4, 4)
	var got []image.Rectangle
	for _, s := range []image.Point{{2, 2}, {2, 2}, {2, 2}, {2, 2}} {
		r, ok := p.Place(s.X, s.Y)
		if !ok {
			t.Fatalf("no room for %v after %v", s, got)
		}
		got = append(got, r)
	}
	checkDisjoint(t, p.Bounds(), got)
	if _, ok := p.Place(1, 1); ok {
		t.Errorf("placed rect in full packer")
	}
}

func TestPlaceBestArea(t *testing.T) {
	p := New(10, 10)
	if _, ok := p.Place(10, 6); !ok {
		t.Fatal("no room")
	}
	// Free is now the 10x4 strip at the bottom. A 10x4 fits exactly.
	r, ok := p.Place(10, 4)
	if !ok {
		t.Fatal("no room")
	}
	if want := image.Rect(0, 6, 10, 10); r != want {
		t.Errorf("got %v, want %v", r, want)
	}
}

func TestPlaceTooBig(t *testing.T) {
	p := New(8, 8)
	for _, s := range []image.Point{{9, 1}, {1, 9}, {0, 1}, {-1, 1}} {
		if r, ok := p.Place(s.X, s.Y); ok {
			t.Errorf("placed %v at %v", s, r)
		}
	}
}

func TestPack(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	sizes := make([]image.Point, 200)
	for i := range sizes {
		sizes[i] = image.Pt(1+rnd.Intn(17), 1+rnd.Intn(17))
	}
	sizes[10] = image.Point{}
	rects, side, err := Pack(sizes)
	if err != nil {
		t.Fatal(err)
	}
	if side&(side-1) != 0 {
		t.Errorf("side %d not a power of two", side)
	}
	for i, r := range rects {
		if got := r.Size(); got != sizes[i] && !(sizes[i] == image.Point{}) {
			t.Errorf("rect %d: got size %v, want %v", i, got, sizes[i])
		}
	}
	if !rects[10].Empty() {
		t.Errorf("empty size got %v", rects[10])
	}
	checkDisjoint(t, image.Rect(0, 0, side, side), rects)
}

func TestPackTooBig(t *testing.T) {
	if _, _, err := Pack([]image.Point{{MaxSize + 1, 1}}); err == nil {
		t.Errorf("expected error")
	}
}

func TestLightmap(t *testing.T) {
	texels := []byte{
		1, 1, 1, 255, 2, 2, 2, 255,
		3, 3, 3, 255, 4, 4, 4, 255,
		5, 5, 5, 255,
	}
	faces := []bsp.Face{
		{LightmapOffset: 0, LightmapSize: [2]uint32{2, 2}, HasLightmap: true},
		{LightmapOffset: 0, LightmapSize: [2]uint32{9, 9}},
		{LightmapOffset: 4, LightmapSize: [2]uint32{1, 1}, HasLightmap: true},
	}
	img, rects, err := Lightmap(faces, texels)
	if err != nil {
		t.Fatal(err)
	}
	if !rects[1].Empty() {
		t.Errorf("face without lightmap got %v", rects[1])
	}
	r := rects[0]
	if got := img.NRGBAAt(r.Min.X+1, r.Min.Y+1); got.R != 4 || got.A != 255 {
		t.Errorf("got %v, want texel 4", got)
	}
	r = rects[2]
	if got := img.NRGBAAt(r.Min.X, r.Min.Y); got.R != 5 {
		t.Errorf("got %v, want texel 5", got)
	}
	checkDisjoint(t, img.Bounds(), rects)
}
