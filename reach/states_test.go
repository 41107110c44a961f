package reach

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/reachout/common"
	"github.com/milk9111/reachout/physics"
)

func TestSearchApproachThreshold(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)
	search := &searchState{stateCore{ctx: ctx}}

	ctx.surfacePoint = mgl64.Vec3{0.2, 0, 3}
	if got := search.Next(); got != StateSearch {
		t.Fatalf("above the approach threshold Next() = %v, want search", got)
	}

	ctx.surfacePoint = mgl64.Vec3{0.2, 0, 1.5}
	if got := search.Next(); got != StateApproach {
		t.Fatalf("below the approach threshold Next() = %v, want approach", got)
	}
}

func TestSearchResetsOnZeroVelocity(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	search := &searchState{stateCore{ctx: ctx}}

	h.vel = mgl64.Vec3{}
	if got := search.Next(); got != StateReset {
		t.Fatalf("Next() = %v, want reset", got)
	}
}

func TestApproachTransitions(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)
	approach := &approachState{stateCore{ctx: ctx}}

	// far from the shoulder: keep approaching
	ctx.surfacePoint = mgl64.Vec3{0.2, 1.4, 1.5}
	approach.elapsed = 0.5
	if got := approach.Next(); got != StateApproach {
		t.Fatalf("Next() = %v, want approach", got)
	}

	// surface within the rise radius of the shoulder
	ctx.surfacePoint = h.pos.Add(h.rightOffset).Add(mgl64.Vec3{0, -0.35, 0.2})
	if got := approach.Next(); got != StateRise {
		t.Fatalf("Next() = %v, want rise", got)
	}

	// timeout wins regardless of proximity
	approach.elapsed = 2.0
	if got := approach.Next(); got != StateReset {
		t.Fatalf("after timeout Next() = %v, want reset", got)
	}
}

func TestApproachBlendsWeightsTowardTargets(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)
	approach := &approachState{stateCore{ctx: ctx}}
	approach.Enter()

	target := ctx.Target()
	for i := 0; i < 600; i++ {
		approach.Update(1.0 / 60.0)
		if target.Weight < 0 || target.Weight > 1 || target.RotationWeight < 0 || target.RotationWeight > 1 {
			t.Fatalf("weights out of range: %v %v", target.Weight, target.RotationWeight)
		}
	}
	// past the blend duration the weights hold their targets
	if diff := target.Weight - ctx.cfg.ApproachIKWeight; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("ik weight = %v, want %v", target.Weight, ctx.cfg.ApproachIKWeight)
	}
	if diff := target.RotationWeight - ctx.cfg.ApproachRotationWeight; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("rotation weight = %v, want %v", target.RotationWeight, ctx.cfg.ApproachRotationWeight)
	}

	// hand faces straight down
	down := common.FaceDirection(worldDown, h.forward)
	if common.AngleBetween(target.Rot, down) > 1e-6 {
		t.Fatalf("target rotation not facing down")
	}
}

func TestRiseToTouch(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)
	rise := &riseState{stateCore{ctx: ctx}}

	ctx.surfacePoint = mgl64.Vec3{0.2, 1.05, 2.6}
	ctx.Target().WorldPos = ctx.surfacePoint

	rise.elapsed = 0.5
	if got := rise.Next(); got != StateRise {
		t.Fatalf("before the minimum rise time Next() = %v, want rise", got)
	}

	rise.elapsed = 1.2
	if got := rise.Next(); got != StateTouch {
		t.Fatalf("in contact past the minimum time Next() = %v, want touch", got)
	}

	// out of contact: keep rising
	ctx.Target().WorldPos = ctx.surfacePoint.Add(mgl64.Vec3{0, 0.2, 0})
	if got := rise.Next(); got != StateRise {
		t.Fatalf("out of contact Next() = %v, want rise", got)
	}
}

func TestTouchTimeout(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)
	touch := &touchState{stateCore{ctx: ctx}}

	touch.elapsed = 0.4
	if got := touch.Next(); got != StateTouch {
		t.Fatalf("Next() = %v, want touch", got)
	}
	touch.elapsed = 0.6
	if got := touch.Next(); got != StateReset {
		t.Fatalf("at 0.6s Next() = %v, want reset regardless of other conditions", got)
	}
}

func TestResetRoundTrip(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	target := ctx.Target()

	// disturb the pose as a finished interaction would have
	target.Weight = 0.9
	target.RotationWeight = 0.8
	target.LocalPos = target.RestLocalPos().Add(mgl64.Vec3{0.3, 0.2, 0.4})
	target.Rot = mgl64.QuatRotate(1.2, mgl64.Vec3{0, 1, 0})
	ctx.heightOffset = 1.8

	reset := &resetState{stateCore{ctx: ctx}}
	reset.Enter()

	h.vel = mgl64.Vec3{}
	for i := 0; i < 60*12; i++ {
		if got := reset.Next(); got != StateReset {
			t.Fatalf("reset auto-advanced with zero velocity: %v", got)
		}
		reset.Update(1.0 / 60.0)
	}

	if target.Weight > 1e-6 || target.RotationWeight > 1e-6 {
		t.Fatalf("weights did not decay: %v %v", target.Weight, target.RotationWeight)
	}
	if target.LocalPos.Sub(target.RestLocalPos()).Len() > 1e-6 {
		t.Fatalf("local position %v did not return to rest %v", target.LocalPos, target.RestLocalPos())
	}
	if common.AngleBetween(target.Rot, target.RestRot()) > 1e-6 {
		t.Fatal("rotation did not return to rest")
	}
	if diff := ctx.heightOffset - ctx.cfg.RestHeight; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("height offset = %v, want %v", ctx.heightOffset, ctx.cfg.RestHeight)
	}

	// motion resumes: reset hands control back to search
	h.vel = mgl64.Vec3{0, 0, 1}
	if got := reset.Next(); got != StateSearch {
		t.Fatalf("Next() = %v, want search once moving again", got)
	}
}

func TestResetEnterClearsTracking(t *testing.T) {
	h := newHost()
	ctx := testContext(t, h)
	trackLedge(t, h, ctx)

	reset := &resetState{stateCore{ctx: ctx}}
	reset.Enter()

	if ctx.Tracked() != nil || ctx.SurfaceDefined() {
		t.Fatal("reset entry must clear the tracked surface")
	}
	if ctx.deferredReset {
		t.Fatal("reset entry must not arm the deferred flag")
	}
}

// TestLifecycleIntegration walks a character up to a ledge through the
// physics world and checks the state sequence and weight bounds.
func TestLifecycleIntegration(t *testing.T) {
	h := newHost()
	ledge := physics.NewBox(mgl64.Vec3{0.3, 0.9, 3}, mgl64.Vec3{1, 0.15, 0.4}, physics.LayerInteractable)
	h.world.Add(ledge)

	rig := h.rig()
	ctrl, err := NewController(rig, nil, physics.LayerInteractable)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.world.SetHandler(ctrl)

	rootBox := physics.Box{Center: h.pos.Add(mgl64.Vec3{0, 0.9, 0}), HalfExtents: mgl64.Vec3{0.3, 0.9, 0.3}}
	volume := physics.DetectionVolumeFor(rootBox, ctrl.ctx.cfg.ArmReach)
	volumeOffset := volume.Center.Sub(h.pos)

	seen := map[StateID]bool{StateSearch: true}
	dt := 1.0 / 60.0
	for i := 0; i < 60*12; i++ {
		tm := float64(i) * dt
		switch {
		case tm >= 6:
			h.vel = mgl64.Vec3{0, 0, -1.2}
		case h.pos.Z() >= 2.3:
			h.vel = mgl64.Vec3{0, 0, 0.2}
		default:
			h.vel = mgl64.Vec3{0, 0, 1.2}
		}
		h.pos = h.pos.Add(h.vel.Mul(dt))

		volume.Center = h.pos.Add(volumeOffset)
		h.world.Step(volume)
		ctrl.Tick(dt)
		seen[ctrl.State()] = true

		out := ctrl.Output()
		if out.Weight < 0 || out.Weight > 1 || out.RotationWeight < 0 || out.RotationWeight > 1 {
			t.Fatalf("tick %d: weights out of range: %+v", i, out)
		}
	}

	for _, want := range []StateID{StateApproach, StateRise, StateReset} {
		if !seen[want] {
			t.Fatalf("lifecycle never visited %v (saw %v)", want, seen)
		}
	}
	if got := ctrl.State(); got != StateSearch && got != StateReset {
		t.Fatalf("final state = %v", got)
	}
}

// TestTriggerRaceFirstColliderWins delivers begin events for two interactable
// colliders in the same step; only the first may be accepted.
func TestTriggerRaceFirstColliderWins(t *testing.T) {
	h := newHost()
	first := physics.NewBox(mgl64.Vec3{0.3, 0.9, 1}, mgl64.Vec3{0.5, 0.15, 0.3}, physics.LayerInteractable)
	second := physics.NewBox(mgl64.Vec3{-0.3, 0.9, 1}, mgl64.Vec3{0.5, 0.15, 0.3}, physics.LayerInteractable)
	h.world.Add(first)
	h.world.Add(second)

	ctrl, err := NewController(h.rig(), nil, physics.LayerInteractable)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.world.SetHandler(ctrl)

	volume := physics.Box{Center: h.pos.Add(mgl64.Vec3{0, 0.9, 0.5}), HalfExtents: mgl64.Vec3{1.5, 1.5, 1.5}}
	h.world.Step(volume)

	if got := ctrl.Context().Tracked(); got == nil || got.ID() != first.ID() {
		t.Fatal("first interactable collider did not win the race")
	}
}
