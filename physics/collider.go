// Package physics provides the query-and-trigger collaborator the reach
// controller consumes: static colliders with layer bits, closest-point and
// raycast queries, and trigger-overlap event delivery against a detection
// volume.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Layer is a collision-layer bitmask classifying colliders.
type Layer uint32

const (
	LayerNone         Layer = 0
	LayerSolid        Layer = 1 << 0
	LayerInteractable Layer = 1 << 1
)

// Contains reports whether any bit of other is set in l.
func (l Layer) Contains(other Layer) bool {
	return l&other != 0
}

type shapeKind int

const (
	boxShape shapeKind = iota
	sphereShape
)

// Collider is a static trigger shape with a stable identity.
type Collider struct {
	id     uuid.UUID
	layer  Layer
	kind   shapeKind
	center mgl64.Vec3
	half   mgl64.Vec3
	radius float64
}

// NewBox creates an axis-aligned box collider.
func NewBox(center, halfExtents mgl64.Vec3, layer Layer) *Collider {
	return &Collider{
		id:     uuid.New(),
		layer:  layer,
		kind:   boxShape,
		center: center,
		half:   halfExtents,
	}
}

// NewSphere creates a sphere collider.
func NewSphere(center mgl64.Vec3, radius float64, layer Layer) *Collider {
	return &Collider{
		id:     uuid.New(),
		layer:  layer,
		kind:   sphereShape,
		center: center,
		radius: radius,
	}
}

// ID returns the collider's identity.
func (c *Collider) ID() uuid.UUID { return c.id }

// Layer returns the collider's layer bits.
func (c *Collider) Layer() Layer { return c.layer }

// Center returns the collider's center.
func (c *Collider) Center() mgl64.Vec3 { return c.center }

// ClosestPoint returns the nearest point on the collider to p. A probe inside
// the collider maps to itself.
func (c *Collider) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	switch c.kind {
	case sphereShape:
		d := p.Sub(c.center)
		dist := d.Len()
		if dist <= c.radius {
			return p
		}
		return c.center.Add(d.Mul(c.radius / dist))
	default:
		min, max := c.bounds()
		return mgl64.Vec3{
			clamp(p.X(), min.X(), max.X()),
			clamp(p.Y(), min.Y(), max.Y()),
			clamp(p.Z(), min.Z(), max.Z()),
		}
	}
}

func (c *Collider) bounds() (min, max mgl64.Vec3) {
	return c.center.Sub(c.half), c.center.Add(c.half)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Box is an axis-aligned extent, used for detection volumes and root bounds.
type Box struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// Overlaps reports whether the box intersects the collider.
func (b Box) Overlaps(c *Collider) bool {
	if c == nil {
		return false
	}
	if c.kind == sphereShape {
		nearest := mgl64.Vec3{
			clamp(c.center.X(), b.Center.X()-b.HalfExtents.X(), b.Center.X()+b.HalfExtents.X()),
			clamp(c.center.Y(), b.Center.Y()-b.HalfExtents.Y(), b.Center.Y()+b.HalfExtents.Y()),
			clamp(c.center.Z(), b.Center.Z()-b.HalfExtents.Z(), b.Center.Z()+b.HalfExtents.Z()),
		}
		return nearest.Sub(c.center).Len() <= c.radius
	}
	min, max := c.bounds()
	for i := 0; i < 3; i++ {
		if b.Center[i]+b.HalfExtents[i] < min[i] || b.Center[i]-b.HalfExtents[i] > max[i] {
			return false
		}
	}
	return true
}

// DetectionVolumeFor derives the trigger volume from the character's root
// collider extent, computed once at setup: grown laterally by arm reach and
// biased upward toward chest height.
func DetectionVolumeFor(root Box, reach float64) Box {
	half := root.HalfExtents
	half[0] += reach
	half[2] += reach
	return Box{
		Center:      root.Center.Add(mgl64.Vec3{0, root.HalfExtents.Y() * 0.5, 0}),
		HalfExtents: half,
	}
}
