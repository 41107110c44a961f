package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// OverlapHandler receives trigger events in the order a physics engine
// delivers them: Begin on first contact, Stay every step while the overlap
// persists, End on separation.
type OverlapHandler interface {
	OnOverlapBegin(c *Collider)
	OnOverlapStay(c *Collider)
	OnOverlapEnd(c *Collider)
}

// World holds the registered colliders and tracks which of them currently
// overlap the detection volume.
type World struct {
	colliders   []*Collider
	overlapping map[uuid.UUID]*Collider
	handler     OverlapHandler
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{overlapping: make(map[uuid.UUID]*Collider)}
}

// Add registers a collider. Colliders are static; there is no removal.
func (w *World) Add(c *Collider) {
	if c == nil {
		return
	}
	w.colliders = append(w.colliders, c)
}

// SetHandler installs the overlap event receiver.
func (w *World) SetHandler(h OverlapHandler) {
	w.handler = h
}

// Step diffs the detection volume against every collider and delivers
// begin/stay/end events for this tick. Events for multiple simultaneously
// overlapping colliders are delivered in registration order.
func (w *World) Step(volume Box) {
	for _, c := range w.colliders {
		inside := volume.Overlaps(c)
		_, was := w.overlapping[c.id]
		switch {
		case inside && !was:
			w.overlapping[c.id] = c
			if w.handler != nil {
				w.handler.OnOverlapBegin(c)
			}
		case inside && was:
			if w.handler != nil {
				w.handler.OnOverlapStay(c)
			}
		case !inside && was:
			delete(w.overlapping, c.id)
			if w.handler != nil {
				w.handler.OnOverlapEnd(c)
			}
		}
	}
}

// RayHit describes the nearest raycast intersection.
type RayHit struct {
	Collider *Collider
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycast finds the nearest hit along origin+dir within maxDist among
// colliders matching mask. dir need not be normalized. Rays starting inside a
// collider miss it.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask Layer) (RayHit, bool) {
	if dir.Len() == 0 || maxDist <= 0 {
		return RayHit{}, false
	}
	dir = dir.Normalize()

	var best RayHit
	found := false
	for _, c := range w.colliders {
		if !c.layer.Contains(mask) {
			continue
		}
		var (
			hit RayHit
			ok  bool
		)
		if c.kind == sphereShape {
			hit, ok = raySphere(origin, dir, c)
		} else {
			hit, ok = rayBox(origin, dir, c)
		}
		if ok && hit.Distance <= maxDist && (!found || hit.Distance < best.Distance) {
			best = hit
			found = true
		}
	}
	return best, found
}

// rayBox is a slab intersection that also reports the entry-face normal.
func rayBox(origin, dir mgl64.Vec3, c *Collider) (RayHit, bool) {
	min, max := c.bounds()
	tmin := 0.0
	tmax := math.Inf(1)
	axis := -1
	sign := 0.0

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < min[i] || origin[i] > max[i] {
				return RayHit{}, false
			}
			continue
		}
		invD := 1.0 / dir[i]
		t1 := (min[i] - origin[i]) * invD
		t2 := (max[i] - origin[i]) * invD
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tmin {
			tmin = t1
			axis = i
			sign = s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RayHit{}, false
		}
	}
	if axis < 0 || tmin <= 0 {
		// ray started inside the box
		return RayHit{}, false
	}
	var n mgl64.Vec3
	n[axis] = sign
	return RayHit{
		Collider: c,
		Point:    origin.Add(dir.Mul(tmin)),
		Normal:   n,
		Distance: tmin,
	}, true
}

func raySphere(origin, dir mgl64.Vec3, c *Collider) (RayHit, bool) {
	oc := origin.Sub(c.center)
	b := oc.Dot(dir)
	disc := b*b - (oc.Dot(oc) - c.radius*c.radius)
	if disc < 0 {
		return RayHit{}, false
	}
	t := -b - math.Sqrt(disc)
	if t <= 0 {
		return RayHit{}, false
	}
	p := origin.Add(dir.Mul(t))
	return RayHit{
		Collider: c,
		Point:    p,
		Normal:   p.Sub(c.center).Normalize(),
		Distance: t,
	}, true
}
