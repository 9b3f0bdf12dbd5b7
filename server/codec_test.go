package server

import (
	"reflect"
	"strings"
	"testing"

	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/feature"
)

func TestJSONMoveDecoderDecodesEveryMoveKind(t *testing.T) {
	d := NewJSONMoveDecoder()

	cases := []struct {
		name string
		body string
		want sim.Move
	}{
		{"motion_start", `{"kind":"motion_start","bearing":1.5}`, sim.MotionStartMove{Bearing: 1.5}},
		{"motion_stop", `{"kind":"motion_stop"}`, sim.MotionStopMove{}},
		{"hand_activation", `{"kind":"hand_activation","hand":1}`, sim.HandActivationMove{Hand: feature.HandRight}},
		{
			"inventory_update",
			`{"kind":"inventory_update","hand":0,"inventory_index":2,"update_variant":1}`,
			sim.InventoryUpdateMove{Hand: feature.HandLeft, InventoryIndex: 2, UpdateVariant: 1},
		},
		{
			"craft",
			`{"kind":"craft","assembly":{"recipe_codename":"axe","sources":[[{"actor_id":5,"quantity":1}]]}}`,
			sim.CraftMove{Assembly: sim.Assembly{
				RecipeCodename: "axe",
				Sources:        [][]sim.AssemblySource{{{ActorID: 5, Quantity: 1}}},
			}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := d.Decode([]byte(c.body))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestJSONMoveDecoderRejectsUnknownKind(t *testing.T) {
	d := NewJSONMoveDecoder()
	if _, err := d.Decode([]byte(`{"kind":"nonsense"}`)); err == nil {
		t.Fatalf("expected an error for an unrecognized move kind")
	}
}

func TestJSONMoveDecoderRejectsMalformedJSON(t *testing.T) {
	d := NewJSONMoveDecoder()
	if _, err := d.Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestJSONMoveDecoderRejectsCraftWithoutAssembly(t *testing.T) {
	d := NewJSONMoveDecoder()
	if _, err := d.Decode([]byte(`{"kind":"craft"}`)); err == nil {
		t.Fatalf("expected an error for a craft move with no assembly")
	}
}

func TestJSONActionEncoderProducesKindAndPayload(t *testing.T) {
	e := NewJSONActionEncoder()

	data, err := e.Encode(sim.IdleAction{ActorID_: 7})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `"kind":"sim.IdleAction"`
	if !strings.Contains(string(data), want) {
		t.Errorf("got %s, expected it to contain %s", data, want)
	}
}
