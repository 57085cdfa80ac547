package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/ThomasHabets/hlbsp/internal/config"
	"github.com/ThomasHabets/hlbsp/internal/fixture"
	"github.com/ThomasHabets/hlbsp/pkg/export"
	"github.com/ThomasHabets/hlbsp/pkg/source"
)

// testEnv puts two maps in <tmp>/valve/maps, and a WAD with the texture the
// second one lacks in <tmp>/valve, where the map's wad key points.
func testEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	maps := filepath.Join(dir, "valve", "maps")
	if err := os.MkdirAll(maps, 0755); err != nil {
		t.Fatal(err)
	}
	for fn, b := range map[string][]byte{
		filepath.Join(maps, "quad.bsp"):     fixture.QuadBSP("WALL", true),
		filepath.Join(maps, "external.bsp"): fixture.QuadBSP("CRATE", false),
		filepath.Join(dir, "valve", "halflife.wad"): fixture.WAD(fixture.WADEntry{
			Name: "CRATE",
			Data: fixture.Miptex("CRATE", 32, 16, 7, true),
		}),
	} {
		if err := os.WriteFile(fn, b, 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Serve.Maps = maps
	e := &env{cfg: cfg, src: source.New(nil, "")}
	t.Cleanup(func() { e.src.Close() })
	return e
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, b
}

func TestServeStatus(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	for _, test := range []struct {
		path string
		want int
	}{
		{"/maps/quad/info", http.StatusOK},
		{"/maps/quad/geometry/0", http.StatusOK},
		{"/maps/quad/geometry/1", http.StatusOK},
		{"/maps/quad/geometry/2", http.StatusNotFound},
		{"/maps/quad/geometry/x", http.StatusNotFound},
		{"/maps/quad/textures/WALL.png", http.StatusOK},
		{"/maps/quad/textures/wall.png", http.StatusOK},
		{"/maps/quad/textures/NOPE.png", http.StatusNotFound},
		{"/maps/quad/lightmap.png", http.StatusOK},
		{"/maps/quad/lightmap.png?model=1", http.StatusOK},
		{"/maps/quad/lightmap.png?model=9", http.StatusNotFound},
		{"/maps/external/textures/CRATE.png", http.StatusOK},
		{"/maps/nope/info", http.StatusNotFound},
		{"/maps/../info", http.StatusNotFound},
		{"/other", http.StatusNotFound},
	} {
		resp, _ := get(t, ts, test.path)
		if resp.StatusCode != test.want {
			t.Errorf("%s: got %d, want %d", test.path, resp.StatusCode, test.want)
		}
	}
}

func TestServeRequestID(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	resp, _ := get(t, ts, "/maps/quad/info")
	if _, err := uuid.Parse(resp.Header.Get("X-Request-ID")); err != nil {
		t.Errorf("bad request ID %q: %v", resp.Header.Get("X-Request-ID"), err)
	}
}

func TestServeMethod(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	resp, err := http.Post(ts.URL+"/maps/quad/info", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got, want := resp.StatusCode, http.StatusMethodNotAllowed; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestServeInfo(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	_, b := get(t, ts, "/maps/quad/info")
	var info export.Info
	if err := json.Unmarshal(b, &info); err != nil {
		t.Fatal(err)
	}
	if got, want := info.Name, "quad"; got != want {
		t.Errorf("name: got %q, want %q", got, want)
	}
	if got, want := info.Faces, 3; got != want {
		t.Errorf("faces: got %d, want %d", got, want)
	}
	if got, want := info.WADs, []string{"halflife.wad"}; !reflect.DeepEqual(got, want) {
		t.Errorf("wads: got %q, want %q", got, want)
	}
}

func TestServeGeometry(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	resp, b := get(t, ts, "/maps/quad/geometry/0")
	if got, want := resp.Header.Get("Content-Type"), "application/x-protobuf"; got != want {
		t.Errorf("content type: got %q, want %q", got, want)
	}
	m, err := export.UnmarshalMesh(b)
	if err != nil {
		t.Fatal(err)
	}
	// Four corners of the square and three of the sky triangle.
	if got, want := len(m.Positions), 7*3; got != want {
		t.Errorf("got %d position floats, want %d", got, want)
	}
	if got, want := len(m.Batches), 1; got != want {
		t.Fatalf("got %d batches, want %d", got, want)
	}
	if got, want := m.Batches[0].Texture, "WALL"; got != want {
		t.Errorf("got texture %q, want %q", got, want)
	}
}

func TestServeTexture(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	for _, test := range []struct {
		path string
		w, h int
	}{
		{"/maps/quad/textures/WALL.png", 16, 16},
		{"/maps/external/textures/CRATE.png", 32, 16},
	} {
		_, b := get(t, ts, test.path)
		img, err := png.Decode(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("%s: %v", test.path, err)
		}
		if got := img.Bounds().Size(); got.X != test.w || got.Y != test.h {
			t.Errorf("%s: got %v, want %dx%d", test.path, got, test.w, test.h)
		}
	}
}

func TestServeHead(t *testing.T) {
	ts := httptest.NewServer(newServer(testEnv(t)).router())
	defer ts.Close()
	resp, err := http.Head(ts.URL + "/maps/quad/lightmap.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got, want := resp.StatusCode, http.StatusOK; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
	if resp.ContentLength <= 0 {
		t.Errorf("got content length %d, want > 0", resp.ContentLength)
	}
}
