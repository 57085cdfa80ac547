package export

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ThomasHabets/hlbsp/internal/fixture"
	"github.com/ThomasHabets/hlbsp/pkg/bsp"
)

func loadQuad(t *testing.T) (*bsp.Map, *bsp.Geometry, []bsp.Batch) {
	t.Helper()
	m, err := bsp.LoadBytes(fixture.QuadBSP("WALL", true))
	if err != nil {
		t.Fatal(err)
	}
	g, err := m.ModelGeometry(0)
	if err != nil {
		t.Fatal(err)
	}
	return m, g, g.Batches()
}

func TestWriteOBJ(t *testing.T) {
	_, g, batches := loadQuad(t)
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, g, batches, "quad.mtl", Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"mtllib quad.mtl\n",
		"v 64 64 0\n",
		"vt 4 -4\n",
		"vn 0 0 1\n",
		"usemtl WALL\n",
		"f 1/1/1 2/2/2 3/3/3\nf 1/1/1 3/3/3 4/4/4\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	// The sky face has vertices, but is not drawn.
	if strings.Contains(out, "usemtl sky") {
		t.Errorf("sky was drawn")
	}
	if got, want := strings.Count(out, "\nv "), len(g.Vertices); got != want {
		t.Errorf("got %d vertices, want %d", got, want)
	}
}

func TestWriteOBJOptions(t *testing.T) {
	_, g, batches := loadQuad(t)
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, g, batches, "", Options{Scale: 0.5, YUp: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "mtllib") {
		t.Errorf("got mtllib without asking for one")
	}
	for _, want := range []string{"v 32 0 -32\n", "vn 0 1 -0\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestWriteMTL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMTL(&buf, []string{"WALL", "{FENCE"}, "textures", "png"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"newmtl WALL\n", "map_Kd textures/{FENCE.png\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestMesh(t *testing.T) {
	_, g, batches := loadQuad(t)
	m := NewMesh(g, batches, Options{})
	if got, want := len(m.Positions), len(g.Vertices)*3; got != want {
		t.Errorf("got %d position floats, want %d", got, want)
	}
	got, err := UnmarshalMesh(m.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("got %+v, want %+v", got, m)
	}
}

func TestUnmarshalMeshTruncated(t *testing.T) {
	_, g, batches := loadQuad(t)
	b := NewMesh(g, batches, Options{}).Marshal()
	if _, err := UnmarshalMesh(b[:len(b)-1]); err == nil {
		t.Errorf("expected error")
	}
}

func TestInfo(t *testing.T) {
	m, _, _ := loadQuad(t)
	info := NewInfo("quad", m)
	if got, want := info.SkyName, "desert"; got != want {
		t.Errorf("sky: got %q, want %q", got, want)
	}
	if info.StartPoint == nil || mgl32.Vec3(*info.StartPoint) != (mgl32.Vec3{32, 32, 36}) {
		t.Errorf("start point: got %v", info.StartPoint)
	}
	if got, want := len(info.Models), 2; got != want {
		t.Errorf("got %d models, want %d", got, want)
	}
	want := []TextureInfo{
		{Name: "WALL", Width: 16, Height: 16, Embedded: true},
		{Name: "sky", Width: 16, Height: 16, Embedded: true},
	}
	if !reflect.DeepEqual(info.Textures, want) {
		t.Errorf("got %+v, want %+v", info.Textures, want)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, info); err != nil {
		t.Fatal(err)
	}
	var back Info
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Faces != info.Faces || back.SkyName != info.SkyName {
		t.Errorf("got %+v, want %+v", back, info)
	}
}
