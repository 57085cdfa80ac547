package bsp

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const testEntities = `{
"wad" "\half-life\valve\halflife.wad;\half-life\valve\decals.wad;;xeno.wad"
"classname" "worldspawn"
"skyname" "desert"
"message" ""
}
{
"classname" "light"
"origin" "10 20 30"
}
  {
  "origin" "-96 256.5 36"
  "classname"  "info_player_start"
  }
`

func TestParseEntities(t *testing.T) {
	ents, err := ParseEntities(testEntities)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(ents), 3; got != want {
		t.Fatalf("got %d entities, want %d", got, want)
	}
	if got, want := ents[2].EntityID, 2; got != want {
		t.Errorf("got ID %d, want %d", got, want)
	}
	if v, found := ents[0].Data["message"]; !found || v != "" {
		t.Errorf("empty value: got %q,%v", v, found)
	}
	if got, want := ents.SkyName(), "desert"; got != want {
		t.Errorf("SkyName: got %q, want %q", got, want)
	}
	got, ok := ents.StartPoint()
	if !ok {
		t.Fatalf("no start point")
	}
	if want := (mgl32.Vec3{-96, 256.5, 36}); got != want {
		t.Errorf("StartPoint: got %v, want %v", got, want)
	}
	if got, want := ents.WADs(), []string{"halflife.wad", "decals.wad", "xeno.wad"}; !reflect.DeepEqual(got, want) {
		t.Errorf("WADs: got %q, want %q", got, want)
	}
	if got, want := len(ents.FindByClass("light")), 1; got != want {
		t.Errorf("lights: got %d, want %d", got, want)
	}
}

func TestParseEntitiesEmpty(t *testing.T) {
	ents, err := ParseEntities("\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 0 {
		t.Errorf("got %d entities, want 0", len(ents))
	}
	if got := ents.SkyName(); got != "" {
		t.Errorf("SkyName: got %q", got)
	}
	if _, ok := ents.StartPoint(); ok {
		t.Errorf("got start point in empty map")
	}
}

func TestParseEntitiesErrors(t *testing.T) {
	for _, in := range []string{
		"\"classname\" \"light\"\n",
		"{\n\"classname\" \"light\"\n",
		"{\nclassname light\n}\n",
	} {
		if _, err := ParseEntities(in); err == nil {
			t.Errorf("ParseEntities(%q): expected error", in)
		}
	}
}

func TestOrigin(t *testing.T) {
	for _, test := range []struct {
		in   string
		want mgl32.Vec3
		ok   bool
	}{
		{"1 2 3", mgl32.Vec3{1, 2, 3}, true},
		{" -1.5  2e2 3 ", mgl32.Vec3{-1.5, 200, 3}, true},
		{"1 2", mgl32.Vec3{}, false},
		{"a b c", mgl32.Vec3{}, false},
	} {
		e := Entity{Data: map[string]string{"origin": test.in}}
		got, ok := e.Origin()
		if ok != test.ok || got != test.want {
			t.Errorf("Origin(%q): got %v,%v, want %v,%v", test.in, got, ok, test.want, test.ok)
		}
	}
}
