package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/edginaround/worldcore/engine/gateway"
	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/geometry"
)

// untracked is the handle used for scheduler entries nothing ever cancels
// by id — job-fired events re-entered at delay zero, and HungerDrainJob,
// which the source arms with handle=None so a task change on the eater
// never silences its own hunger drain.
const untracked Handle = 0

// Engine is the one piece of code that turns a firing Job or an inbound
// Event into State mutations and outbound Actions — the Go counterpart of
// the source's Engine(executor.Processor). It owns no goroutines of its
// own; Runner drives it from the Scheduler's queue.
type Engine struct {
	mu sync.Mutex

	state     *sim.State
	gateway   gateway.Gateway
	scheduler *Scheduler
	catalog   sim.RecipeCatalog

	opts Options
}

// New builds an Engine over state, delivering through gw and crafting
// against catalog. The returned Engine still needs Start called once its
// Scheduler is wired up (Start fires every existing entity's initial
// events, matching the source's start()).
func New(state *sim.State, gw gateway.Gateway, scheduler *Scheduler, catalog sim.RecipeCatalog, opts ...Option) *Engine {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if scheduler != nil && options.Now != nil {
		scheduler.SetClock(options.Now)
	}
	return &Engine{state: state, gateway: gw, scheduler: scheduler, catalog: catalog, opts: options}
}

// Start fires every existing entity's initial events — a ResumeEvent for
// performers, a HungerDrainJob for eaters — the same pass the source's
// start() makes once before handing control to the Runner.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entity := range e.state.Entities() {
		e.handleEntity(entity)
	}
	return nil
}

// Run dispatches a scheduler firing to the job or event path depending on
// which kind of trigger it carries, mirroring the source's run().
func (e *Engine) Run(handle Handle, trigger any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch t := trigger.(type) {
	case sim.Job:
		e.handleJob(handle, t)
	case sim.Event:
		e.handleEvent(t)
	}
}

// HandleEvent runs event through the engine directly, with no scheduler
// handle — the entry point a decoded client Move uses, matching the
// source's handle_event.
func (e *Engine) HandleEvent(event sim.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handleEvent(event)
}

// HandleConnection builds a hero for a newly accepted client, registers it
// with State and the Gateway, and delivers the initial world snapshot —
// the existing actors (addressed to the new hero alone), the hero itself
// (broadcast to every connected client, the new hero's included), the
// world's configuration, and the hero's
// empty inventory. Ported from the source's handle_connection.
func (e *Engine) HandleConnection(clientID int64, spawn geometry.Point) (sim.EntityId, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hero := sim.NewHero(0, spawn)
	if hero.Features.Inventory == nil {
		return 0, ErrNoHeroFeatures
	}

	existing := make([]sim.ActorSnapshot, 0, len(e.state.Entities()))
	for _, entity := range e.state.Entities() {
		existing = append(existing, entity.AsSnapshot())
	}

	e.state.AddEntity(hero)
	e.handleEntity(hero)

	heroID := hero.Id
	e.gateway.AssociateActor(clientID, heroID)
	e.gateway.SendAction(heroID, sim.ActorCreationAction{Actors: existing})
	e.broadcast(sim.ActorCreationAction{Actors: []sim.ActorSnapshot{hero.AsSnapshot()}})
	e.gateway.SendAction(heroID, sim.ConfigurationAction{ActorID_: heroID, Radius: e.state.Radius()})
	e.gateway.SendAction(heroID, sim.InventoryUpdateAction{
		ActorID_:  heroID,
		Inventory: sim.SnapshotInventory(hero.Features.Inventory),
	})

	return heroID, nil
}

// HandleDisconnection tears down the gateway association for actorID and
// runs its DisconnectionEvent through the usual event path, which is what
// actually removes the entity (via DieAndDropTask). Ported from the
// source's handle_disconnection.
func (e *Engine) HandleDisconnection(actorID sim.EntityId) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.GetEntity(actorID) == nil {
		return ErrUnknownEntity
	}

	e.gateway.DisassociateActor(actorID)
	e.handleEvent(sim.DisconnectionEvent{Receiver: actorID})
	return nil
}

// handleJob executes a firing job, broadcasts everything it produced,
// re-enters its events at delay zero, and re-arms it under the same handle
// if it asked to repeat. Ported from the source's _handle_job.
func (e *Engine) handleJob(handle Handle, job sim.Job) {
	m := e.opts.Metrics
	if m != nil {
		m.UpdateInflightJobs(1)
	}

	start := time.Now()
	result := job.Execute(e.state)
	if m != nil {
		m.RecordJobLatency(fmt.Sprintf("%T", job), time.Since(start))
		m.UpdateInflightJobs(0)
	}

	for _, action := range result.Actions {
		e.broadcast(action)
	}

	for _, event := range result.Events {
		e.scheduler.Enter(untracked, 0, event)
	}

	if result.Repeat != nil {
		e.scheduler.Enter(handle, *result.Repeat, job)
	}

	e.updateQueueDepth()
}

// handleEvent resolves event's receiver, lets it transition its Task, and —
// if that produced a new Task — finishes the old one, starts the new one,
// and re-arms the scheduler entry for whatever job the new task wants next.
// Ported from the source's _handle_event.
func (e *Engine) handleEvent(event sim.Event) {
	entity := e.state.GetEntity(event.ReceiverID())
	if entity == nil {
		return
	}

	oldTask := entity.Task
	entity.HandleEvent(e.state, event)
	newTask := entity.Task

	if oldTask == newTask {
		return
	}

	if craft, ok := newTask.(*sim.CraftTask); ok {
		craft.WithCatalog(e.catalog)
	}

	if m := e.opts.Metrics; m != nil {
		m.IncrementTaskTransition(fmt.Sprintf("%T", oldTask), fmt.Sprintf("%T", newTask))
	}

	for _, action := range oldTask.Finish(e.state) {
		e.broadcast(action)
	}
	for _, action := range newTask.Start(e.state) {
		e.broadcast(action)
	}

	handle := Handle(entity.Id)
	if job := newTask.GetJob(); job != nil {
		e.scheduler.CancelAndEnter(handle, job.GetStartDelay(), job)
	} else {
		e.scheduler.Cancel(handle)
	}

	e.updateQueueDepth()
}

// broadcast sends action through the gateway and records it, the single
// path every broadcast Action flows through so metrics stay accurate.
func (e *Engine) broadcast(action sim.Action) {
	e.gateway.BroadcastAction(action)
	if m := e.opts.Metrics; m != nil {
		m.IncrementActionsBroadcast(fmt.Sprintf("%T", action))
	}
}

// updateQueueDepth reports the scheduler's current pending-entry count, if a
// scheduler and metrics collector are both wired up.
func (e *Engine) updateQueueDepth() {
	if e.scheduler == nil {
		return
	}
	if m := e.opts.Metrics; m != nil {
		m.UpdateQueueDepth(e.scheduler.Len())
	}
}

// handleEntity arms an entity's initial events/jobs: a ResumeEvent for
// anything autonomously ticked, a never-ending HungerDrainJob for anything
// that eats. Ported from the source's _handle_entity.
func (e *Engine) handleEntity(entity *sim.Entity) {
	if entity.Features.Performer != nil {
		e.handleEvent(sim.ResumeEvent{Receiver: entity.Id})
	}
	if entity.Features.Eater != nil {
		job := sim.NewHungerDrainJob(entity.Id)
		if e.opts.HungerDrainInterval > 0 {
			job = sim.NewHungerDrainJobWithInterval(entity.Id, e.opts.HungerDrainInterval)
		}
		e.handleJob(untracked, job)
	}
}
