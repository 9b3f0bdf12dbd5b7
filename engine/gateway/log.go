package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/edginaround/worldcore/sim"
)

// LogGateway writes every delivery as a line to an io.Writer instead of a
// real connection — mirrors the teacher's LogEmitter (graph/emit/log.go),
// swapping workflow events for engine Actions. Text mode is meant for a
// human watching a terminal; JSON mode for piping into a log aggregator.
type LogGateway struct {
	writer   io.Writer
	jsonMode bool
	sent     uint64
}

// NewLogGateway builds a LogGateway writing to writer in the given mode. A
// nil writer defaults to os.Stdout.
func NewLogGateway(writer io.Writer, jsonMode bool) *LogGateway {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogGateway{writer: writer, jsonMode: jsonMode}
}

// NewDefaultLogGateway picks text mode when stdout is a terminal and JSON
// mode otherwise, the way many of the pack's CLIs auto-detect their output
// format via go-isatty.
func NewDefaultLogGateway() *LogGateway {
	return NewLogGateway(os.Stdout, !isatty.IsTerminal(os.Stdout.Fd()))
}

func (g *LogGateway) AssociateActor(clientID int64, actorID sim.EntityId) {
	g.writeLine("associate", &actorID, nil)
	_ = clientID
}

func (g *LogGateway) DisassociateActor(actorID sim.EntityId) {
	g.writeLine("disassociate", &actorID, nil)
}

func (g *LogGateway) SendAction(actorID sim.EntityId, action sim.Action) {
	g.writeLine("send", &actorID, action)
}

func (g *LogGateway) BroadcastAction(action sim.Action) {
	g.writeLine("broadcast", nil, action)
}

func (g *LogGateway) writeLine(kind string, actorID *sim.EntityId, action sim.Action) {
	g.sent++
	if g.jsonMode {
		g.writeJSON(kind, actorID, action)
		return
	}
	g.writeText(kind, actorID, action)
}

func (g *LogGateway) writeText(kind string, actorID *sim.EntityId, action sim.Action) {
	target := "*"
	if actorID != nil {
		target = fmt.Sprintf("%d", *actorID)
	}
	fmt.Fprintf(g.writer, "[%s] #%s actor=%s action=%T %+v\n",
		kind, humanize.Comma(int64(g.sent)), target, action, action)
}

func (g *LogGateway) writeJSON(kind string, actorID *sim.EntityId, action sim.Action) {
	data, err := json.Marshal(struct {
		Kind    string        `json:"kind"`
		Seq     uint64        `json:"seq"`
		ActorID *sim.EntityId `json:"actor_id,omitempty"`
		Action  sim.Action    `json:"action,omitempty"`
	}{Kind: kind, Seq: g.sent, ActorID: actorID, Action: action})
	if err != nil {
		fmt.Fprintf(g.writer, `{"error":"failed to marshal action: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(g.writer, "%s\n", data)
}
