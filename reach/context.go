// Package reach drives a character's hand toward a nearby surface. A five
// state lifecycle (search, approach, rise, touch, reset) decides each tick
// which IK target to move, how far, and when to let go, based on proximity,
// angle, and motion heuristics. The physical simulation and the IK solver are
// external collaborators bound through a Rig.
package reach

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/milk9111/reachout/config"
	"github.com/milk9111/reachout/physics"
)

// StateID identifies one lifecycle state.
type StateID string

const (
	StateSearch   StateID = "search"
	StateApproach StateID = "approach"
	StateRise     StateID = "rise"
	StateTouch    StateID = "touch"
	StateReset    StateID = "reset"
)

// AllStates enumerates the closed state set.
var AllStates = []StateID{StateSearch, StateApproach, StateRise, StateTouch, StateReset}

// Side selects one of the character's two arms.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// HandTarget is the pose and weights the IK solver consumes for one hand.
// The controller writes it every tick; the host reads it after Tick returns.
type HandTarget struct {
	LocalPos mgl64.Vec3
	WorldPos mgl64.Vec3
	Rot      mgl64.Quat

	Weight         float64 // IK blend weight, [0,1]
	RotationWeight float64 // rotation-constraint blend weight, [0,1]

	restLocalPos mgl64.Vec3
	restRot      mgl64.Quat
}

// NewHandTarget records pose as both the live and the rest pose.
func NewHandTarget(localPos mgl64.Vec3, rot mgl64.Quat) *HandTarget {
	return &HandTarget{
		LocalPos:     localPos,
		Rot:          rot,
		restLocalPos: localPos,
		restRot:      rot,
	}
}

// RestLocalPos returns the recorded rest local position.
func (t *HandTarget) RestLocalPos() mgl64.Vec3 { return t.restLocalPos }

// RestRot returns the recorded rest rotation.
func (t *HandTarget) RestRot() mgl64.Quat { return t.restRot }

// SideRig binds one body side's host references.
type SideRig struct {
	Shoulder func() mgl64.Vec3
	Target   *HandTarget
}

// SurfaceQuery is the slice of the physics collaborator the controller
// queries during the rise.
type SurfaceQuery interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.Layer) (physics.RayHit, bool)
}

// Rig carries every host reference the controller reads. All fields are
// required; missing ones are a setup bug reported once by Validate.
type Rig struct {
	RootPosition func() mgl64.Vec3
	RootForward  func() mgl64.Vec3
	RootRight    func() mgl64.Vec3
	Velocity     func() mgl64.Vec3

	Left  SideRig
	Right SideRig

	Surfaces SurfaceQuery
}

// Validate reports the first missing binding.
func (r *Rig) Validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("nil rig")
	case r.RootPosition == nil:
		return fmt.Errorf("rig missing RootPosition")
	case r.RootForward == nil:
		return fmt.Errorf("rig missing RootForward")
	case r.RootRight == nil:
		return fmt.Errorf("rig missing RootRight")
	case r.Velocity == nil:
		return fmt.Errorf("rig missing Velocity")
	case r.Left.Shoulder == nil || r.Right.Shoulder == nil:
		return fmt.Errorf("rig missing shoulder anchor")
	case r.Left.Target == nil || r.Right.Target == nil:
		return fmt.Errorf("rig missing hand target")
	case r.Surfaces == nil:
		return fmt.Errorf("rig missing surface query")
	}
	return nil
}

// undefinedPoint is the at-infinity sentinel for the surface point.
var undefinedPoint = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}

// Context is the single mutable record shared by every state of one
// controller. The controller is its only owner; states mutate it through
// methods, the host reads outputs after each tick.
type Context struct {
	cfg          *config.Tuning
	rig          *Rig
	interactable physics.Layer
	log          *logrus.Entry

	side    Side
	current *SideRig

	tracked       *physics.Collider
	surfacePoint  mgl64.Vec3
	lowestDist    float64
	heightOffset  float64
	deferredReset bool
}

func newContext(rig *Rig, cfg *config.Tuning, interactable physics.Layer, log *logrus.Entry) *Context {
	return &Context{
		cfg:          cfg,
		rig:          rig,
		interactable: interactable,
		log:          log,
		side:         SideRight,
		current:      &rig.Right,
		surfacePoint: undefinedPoint,
		lowestDist:   math.Inf(1),
		heightOffset: cfg.RestHeight,
	}
}

// ActiveSide returns the side bound for the in-progress interaction.
func (c *Context) ActiveSide() Side { return c.side }

// Target returns the active side's hand target.
func (c *Context) Target() *HandTarget { return c.current.Target }

// Tracked returns the collider currently being tracked, or nil.
func (c *Context) Tracked() *physics.Collider { return c.tracked }

// SurfacePoint returns the nearest point on the tracked collider, or the
// at-infinity sentinel when nothing is tracked.
func (c *Context) SurfacePoint() mgl64.Vec3 { return c.surfacePoint }

// SurfaceDefined reports whether a surface point is currently tracked.
func (c *Context) SurfaceDefined() bool {
	return !math.IsInf(c.surfacePoint.X(), 0)
}

// HeightOffset returns the blended interaction height, used by the host to
// place the probe for the next closest-point query.
func (c *Context) HeightOffset() float64 { return c.heightOffset }

// SelectSide binds the side whose shoulder is closer to ref as the active
// slot. Called once per tracked interaction, when tracking begins; the choice
// then holds until release even if the other shoulder becomes closer.
func (c *Context) SelectSide(ref mgl64.Vec3) {
	dl := ref.Sub(c.rig.Left.Shoulder()).LenSqr()
	dr := ref.Sub(c.rig.Right.Shoulder()).LenSqr()
	if dl < dr {
		c.side = SideLeft
		c.current = &c.rig.Left
	} else {
		c.side = SideRight
		c.current = &c.rig.Right
	}
}

// BeginTracking accepts col only while nothing is tracked and only when it
// carries the interactable layer. The first collider accepted wins; others
// are ignored until it is released.
func (c *Context) BeginTracking(col *physics.Collider) {
	if col == nil || c.tracked != nil || !col.Layer().Contains(c.interactable) {
		return
	}
	c.tracked = col
	c.lowestDist = math.Inf(1)
	c.surfacePoint = col.ClosestPoint(c.rig.RootPosition())
	c.SelectSide(c.surfacePoint)
	c.ComputeTargetOffset()
	c.log.WithFields(logrus.Fields{"collider": col.ID(), "side": c.side}).Debug("begin tracking")
}

// RefreshTracking re-derives the surface point while the tracked collider
// stays in contact. Events for other colliders are ignored.
func (c *Context) RefreshTracking(col *physics.Collider) {
	if col == nil || c.tracked == nil || col.ID() != c.tracked.ID() {
		return
	}
	c.ComputeTargetOffset()
}

// EndTracking releases the tracked collider and arms the deferred reset flag,
// which the next ShouldReset call consumes one tick later.
func (c *Context) EndTracking(col *physics.Collider) {
	if col == nil || c.tracked == nil || col.ID() != c.tracked.ID() {
		return
	}
	c.tracked = nil
	c.surfacePoint = undefinedPoint
	c.deferredReset = true
	c.log.WithField("collider", col.ID()).Debug("end tracking")
}

// ComputeTargetOffset probes the tracked collider at the shoulder's
// horizontal coordinates and the shoulder reference height, then backs the
// result off toward the shoulder so the IK target never sits exactly on the
// surface. The derived point becomes the active target's world position.
func (c *Context) ComputeTargetOffset() {
	if c.tracked == nil {
		return
	}
	sh := c.current.Shoulder()
	probe := mgl64.Vec3{sh.X(), c.cfg.ShoulderRefHeight, sh.Z()}
	pt := c.tracked.ClosestPoint(probe)
	c.surfacePoint = pt

	toShoulder := sh.Sub(pt)
	if l := toShoulder.Len(); l > 0 {
		pt = pt.Add(toShoulder.Mul(c.cfg.SurfaceBackoff / l))
	}
	c.current.Target.WorldPos = pt
}
