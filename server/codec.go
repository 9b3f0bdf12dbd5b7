package server

import (
	"encoding/json"
	"fmt"

	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/feature"
)

// MoveDecoder turns one framed wire message into a client Move. The server
// package owns the contract; callers may supply their own implementation
// in place of JSONMoveDecoder.
type MoveDecoder interface {
	Decode(data []byte) (sim.Move, error)
}

// ActionEncoder turns an outbound Action into wire bytes, satisfying
// gateway.ActionEncoder too (structurally, via the same method set).
type ActionEncoder interface {
	Encode(action sim.Action) ([]byte, error)
}

// moveEnvelope is the minimal tagged-union wire shape for a Move: a "kind"
// discriminator plus whichever fields that kind needs. Adequate to exercise
// the engine end-to-end; not a production framing format.
type moveEnvelope struct {
	Kind string `json:"kind"`

	Bearing        float64               `json:"bearing,omitempty"`
	Hand           feature.Hand          `json:"hand,omitempty"`
	ObjectID       *sim.EntityId         `json:"object_id,omitempty"`
	InventoryIndex int                   `json:"inventory_index,omitempty"`
	UpdateVariant  feature.UpdateVariant `json:"update_variant,omitempty"`
	Assembly       *assemblyWire         `json:"assembly,omitempty"`
}

type assemblyWire struct {
	RecipeCodename string                 `json:"recipe_codename"`
	Sources        [][]sim.AssemblySource `json:"sources"`
}

const (
	kindMotionStart     = "motion_start"
	kindMotionStop      = "motion_stop"
	kindHandActivation  = "hand_activation"
	kindInventoryUpdate = "inventory_update"
	kindCraft           = "craft"
)

// JSONMoveDecoder is the minimal encoding/json-based default MoveDecoder.
type JSONMoveDecoder struct{}

func NewJSONMoveDecoder() JSONMoveDecoder { return JSONMoveDecoder{} }

func (JSONMoveDecoder) Decode(data []byte) (sim.Move, error) {
	var env moveEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("server: decode move: %w", err)
	}

	switch env.Kind {
	case kindMotionStart:
		return sim.MotionStartMove{Bearing: env.Bearing}, nil
	case kindMotionStop:
		return sim.MotionStopMove{}, nil
	case kindHandActivation:
		return sim.HandActivationMove{Hand: env.Hand, ObjectID: env.ObjectID}, nil
	case kindInventoryUpdate:
		return sim.InventoryUpdateMove{
			Hand:           env.Hand,
			InventoryIndex: env.InventoryIndex,
			UpdateVariant:  env.UpdateVariant,
		}, nil
	case kindCraft:
		if env.Assembly == nil {
			return nil, fmt.Errorf("server: craft move missing assembly")
		}
		return sim.CraftMove{Assembly: sim.Assembly{
			RecipeCodename: env.Assembly.RecipeCodename,
			Sources:        env.Assembly.Sources,
		}}, nil
	default:
		return nil, fmt.Errorf("server: unknown move kind %q", env.Kind)
	}
}

// JSONActionEncoder is the minimal encoding/json-based default
// ActionEncoder: a "kind" discriminator (the action's Go type name with its
// package qualifier, e.g. "sim.IdleAction") plus the action's own exported
// fields.
type JSONActionEncoder struct{}

func NewJSONActionEncoder() JSONActionEncoder { return JSONActionEncoder{} }

func (JSONActionEncoder) Encode(action sim.Action) ([]byte, error) {
	return json.Marshal(struct {
		Kind    string     `json:"kind"`
		Payload sim.Action `json:"payload"`
	}{Kind: actionKind(action), Payload: action})
}

func actionKind(action sim.Action) string {
	return fmt.Sprintf("%T", action)
}
