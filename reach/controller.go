package reach

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/reachout/config"
	"github.com/milk9111/reachout/fsm"
	"github.com/milk9111/reachout/logging"
	"github.com/milk9111/reachout/physics"
)

// Controller owns the state machine and the shared context. The host drives
// it with one Tick per simulation step plus any number of overlap events; the
// relative order of the two within a tick is the host's choice. Everything is
// single-threaded except SetTuning, which may be called from a watcher
// goroutine and takes effect at the next Tick.
type Controller struct {
	machine *fsm.Machine[StateID, *physics.Collider]
	ctx     *Context
	tuning  atomic.Pointer[config.Tuning]
}

// NewController validates the rig and builds the state table. interactable is
// the layer mask colliders must carry to be tracked.
func NewController(rig *Rig, tuning *config.Tuning, interactable physics.Layer) (*Controller, error) {
	if err := rig.Validate(); err != nil {
		return nil, fmt.Errorf("reach: %w", err)
	}
	if tuning == nil {
		tuning = config.Default()
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("reach: %w", err)
	}

	log := logging.Log.WithField("component", "reach")
	ctx := newContext(rig, tuning, interactable, log)

	machine, err := fsm.New[StateID, *physics.Collider](StateSearch,
		&searchState{stateCore{ctx: ctx}},
		&approachState{stateCore{ctx: ctx}},
		&riseState{stateCore{ctx: ctx}},
		&touchState{stateCore{ctx: ctx}},
		&resetState{stateCore{ctx: ctx}},
	)
	if err != nil {
		return nil, fmt.Errorf("reach: %w", err)
	}

	c := &Controller{machine: machine, ctx: ctx}
	c.tuning.Store(tuning)
	return c, nil
}

// Tick advances the controller one simulation step.
func (c *Controller) Tick(dt float64) {
	c.ctx.cfg = c.tuning.Load()
	c.machine.Tick(dt)
}

// SetTuning swaps the tuning parameters atomically; the new values apply from
// the next Tick.
func (c *Controller) SetTuning(t *config.Tuning) {
	if t == nil {
		return
	}
	c.tuning.Store(t)
}

// State returns the identifier of the active state.
func (c *Controller) State() StateID {
	return c.machine.Current()
}

// Context exposes the shared interaction record for inspection. Only the
// controller may mutate it.
func (c *Controller) Context() *Context {
	return c.ctx
}

// OnOverlapBegin routes a trigger-begin event to the active state.
func (c *Controller) OnOverlapBegin(col *physics.Collider) {
	c.machine.OverlapBegin(col)
}

// OnOverlapStay routes a trigger-stay event to the active state.
func (c *Controller) OnOverlapStay(col *physics.Collider) {
	c.machine.OverlapStay(col)
}

// OnOverlapEnd routes a trigger-end event to the active state.
func (c *Controller) OnOverlapEnd(col *physics.Collider) {
	c.machine.OverlapEnd(col)
}

// Output is the per-tick product the IK solver consumes for the active side.
type Output struct {
	Side           Side
	TargetWorld    mgl64.Vec3
	TargetLocal    mgl64.Vec3
	TargetRot      mgl64.Quat
	Weight         float64
	RotationWeight float64
	HeightOffset   float64
}

// Output snapshots the active side's pose and weights.
func (c *Controller) Output() Output {
	t := c.ctx.Target()
	return Output{
		Side:           c.ctx.side,
		TargetWorld:    t.WorldPos,
		TargetLocal:    t.LocalPos,
		TargetRot:      t.Rot,
		Weight:         t.Weight,
		RotationWeight: t.RotationWeight,
		HeightOffset:   c.ctx.heightOffset,
	}
}
