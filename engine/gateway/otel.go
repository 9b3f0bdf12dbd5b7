package gateway

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edginaround/worldcore/sim"
)

// OtelGateway wraps an inner Gateway and opens a span around every delivery,
// mirroring the teacher's OTelEmitter (graph/emit/otel.go) — one span per
// Action instead of one span per workflow event. Spans are immediately
// ended since a delivery is a point in time, not a duration.
type OtelGateway struct {
	inner  Gateway
	tracer trace.Tracer
}

// NewOtelGateway wraps inner, tracing every delivery through tracer
// (typically otel.Tracer("worldcore")).
func NewOtelGateway(inner Gateway, tracer trace.Tracer) *OtelGateway {
	return &OtelGateway{inner: inner, tracer: tracer}
}

func (g *OtelGateway) AssociateActor(clientID int64, actorID sim.EntityId) {
	_, span := g.tracer.Start(context.Background(), "gateway.associate_actor")
	span.SetAttributes(attribute.Int64("client_id", clientID), attribute.Int64("actor_id", int64(actorID)))
	span.End()
	g.inner.AssociateActor(clientID, actorID)
}

func (g *OtelGateway) DisassociateActor(actorID sim.EntityId) {
	_, span := g.tracer.Start(context.Background(), "gateway.disassociate_actor")
	span.SetAttributes(attribute.Int64("actor_id", int64(actorID)))
	span.End()
	g.inner.DisassociateActor(actorID)
}

func (g *OtelGateway) SendAction(actorID sim.EntityId, action sim.Action) {
	_, span := g.tracer.Start(context.Background(), fmt.Sprintf("gateway.send_action.%T", action))
	span.SetAttributes(attribute.Int64("actor_id", int64(actorID)))
	span.End()
	g.inner.SendAction(actorID, action)
}

func (g *OtelGateway) BroadcastAction(action sim.Action) {
	_, span := g.tracer.Start(context.Background(), fmt.Sprintf("gateway.broadcast_action.%T", action))
	span.End()
	g.inner.BroadcastAction(action)
}
