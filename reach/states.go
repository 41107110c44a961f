package reach

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/reachout/common"
	"github.com/milk9111/reachout/physics"
)

var (
	worldUp   = mgl64.Vec3{0, 1, 0}
	worldDown = mgl64.Vec3{0, -1, 0}
)

// stateCore carries what every lifecycle state shares: the context reference,
// the per-state elapsed timer, and the overlap routing. Tracking callbacks
// are identical in every state.
type stateCore struct {
	ctx     *Context
	elapsed float64
}

func (s *stateCore) OnOverlapBegin(c *physics.Collider) { s.ctx.BeginTracking(c) }
func (s *stateCore) OnOverlapStay(c *physics.Collider)  { s.ctx.RefreshTracking(c) }
func (s *stateCore) OnOverlapEnd(c *physics.Collider)   { s.ctx.EndTracking(c) }

// searchState idles until a tracked surface comes within approach range.
type searchState struct {
	stateCore
}

func (s *searchState) ID() StateID { return StateSearch }

func (s *searchState) Enter() {
	s.ctx.log.Debug("enter search")
}

func (s *searchState) Exit() {
	s.ctx.log.Debug("exit search")
}

func (s *searchState) Update(dt float64) {}

func (s *searchState) Next() StateID {
	if s.ctx.ShouldReset() {
		return StateReset
	}
	if s.ctx.tracked != nil {
		d := s.ctx.rig.RootPosition().Sub(s.ctx.surfacePoint).Len()
		if d < s.ctx.cfg.ApproachRadius {
			return StateApproach
		}
	}
	return StateSearch
}

// approachState turns the hand to face the surface from above and eases the
// weights in while the character closes distance.
type approachState struct {
	stateCore
}

func (s *approachState) ID() StateID { return StateApproach }

func (s *approachState) Enter() {
	s.elapsed = 0
	s.ctx.log.Debug("enter approach")
}

func (s *approachState) Exit() {}

func (s *approachState) Update(dt float64) {
	s.elapsed += dt
	cfg := s.ctx.cfg
	target := s.ctx.Target()

	facing := common.FaceDirection(worldDown, s.ctx.rig.RootForward())
	target.Rot = common.RotateTowards(target.Rot, facing, cfg.ApproachTurnRate*dt)

	frac := s.elapsed / cfg.WeightBlendSecs
	target.RotationWeight = common.BlendTo(target.RotationWeight, cfg.ApproachRotationWeight, frac)
	target.Weight = common.BlendTo(target.Weight, cfg.ApproachIKWeight, frac)
}

func (s *approachState) Next() StateID {
	if s.elapsed >= s.ctx.cfg.ApproachTimeout || s.ctx.ShouldReset() {
		return StateReset
	}
	if s.ctx.SurfaceDefined() {
		d := s.ctx.surfacePoint.Sub(s.ctx.current.Shoulder()).Len()
		if d < s.ctx.cfg.RiseRadius {
			return StateRise
		}
	}
	return StateApproach
}

// riseState aligns the hand against the surface normal and drives the weights
// to full while the target closes on the contact point.
type riseState struct {
	stateCore
}

func (s *riseState) ID() StateID { return StateRise }

func (s *riseState) Enter() {
	s.elapsed = 0
	s.ctx.log.Debug("enter rise")
}

func (s *riseState) Exit() {}

func (s *riseState) Update(dt float64) {
	s.elapsed += dt
	cfg := s.ctx.cfg
	target := s.ctx.Target()
	frac := s.elapsed / cfg.WeightBlendSecs

	if s.ctx.SurfaceDefined() {
		shoulder := s.ctx.current.Shoulder()
		dir := s.ctx.surfacePoint.Sub(shoulder)
		if hit, ok := s.ctx.rig.Surfaces.Raycast(shoulder, dir, cfg.RiseRadius, s.ctx.interactable); ok {
			facing := common.FaceDirection(hit.Normal.Mul(-1), worldUp)
			target.Rot = common.RotateTowards(target.Rot, facing, cfg.RiseTurnRate*dt)
		}
		s.ctx.heightOffset = common.BlendTo(s.ctx.heightOffset, s.ctx.surfacePoint.Y(), frac)
	}

	target.Weight = common.BlendTo(target.Weight, 1, frac)
	target.RotationWeight = common.BlendTo(target.RotationWeight, 1, frac)
}

func (s *riseState) Next() StateID {
	if s.ctx.ShouldReset() {
		return StateReset
	}
	if s.ctx.SurfaceDefined() && s.elapsed >= s.ctx.cfg.RiseMinSecs {
		d := s.ctx.Target().WorldPos.Sub(s.ctx.surfacePoint).Len()
		if d <= s.ctx.cfg.ContactEpsilon {
			return StateTouch
		}
	}
	return StateRise
}

// touchState holds contact; the pose is already where it should be.
type touchState struct {
	stateCore
}

func (s *touchState) ID() StateID { return StateTouch }

func (s *touchState) Enter() {
	s.elapsed = 0
	s.ctx.log.Debug("enter touch")
}

func (s *touchState) Exit() {}

func (s *touchState) Update(dt float64) {
	s.elapsed += dt
}

func (s *touchState) Next() StateID {
	if s.elapsed > s.ctx.cfg.TouchHold || s.ctx.ShouldReset() {
		return StateReset
	}
	return StateTouch
}

// resetState releases the surface and eases everything back to the recorded
// rest pose. Side selection and weights are left to decay gradually rather
// than snapping on entry.
type resetState struct {
	stateCore
}

func (s *resetState) ID() StateID { return StateReset }

func (s *resetState) Enter() {
	s.elapsed = 0
	s.ctx.tracked = nil
	s.ctx.surfacePoint = undefinedPoint
	s.ctx.log.Debug("enter reset")
}

func (s *resetState) Exit() {
	s.ctx.log.Debug("exit reset")
}

func (s *resetState) Update(dt float64) {
	s.elapsed += dt
	cfg := s.ctx.cfg
	target := s.ctx.Target()
	frac := s.elapsed / cfg.ResetBlendSecs

	s.ctx.heightOffset = common.BlendTo(s.ctx.heightOffset, cfg.RestHeight, frac)
	target.Weight = common.BlendTo(target.Weight, 0, frac)
	target.RotationWeight = common.BlendTo(target.RotationWeight, 0, frac)
	target.LocalPos = common.BlendVec3(target.LocalPos, target.restLocalPos, frac)
	target.Rot = common.RotateTowards(target.Rot, target.restRot, cfg.ResetTurnRate*dt)
}

// Next keeps the controller parked in reset while the character is
// stationary, even past the nominal duration, so it cannot oscillate back
// into search with no motion to re-evaluate.
func (s *resetState) Next() StateID {
	if s.elapsed >= s.ctx.cfg.ResetMinSecs {
		v := s.ctx.rig.Velocity()
		if v.X() != 0 || v.Y() != 0 || v.Z() != 0 {
			return StateSearch
		}
	}
	return StateReset
}
