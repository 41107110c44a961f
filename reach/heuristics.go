package reach

import "math"

// ShouldReset reports whether the interaction should abort. Any true result
// also resets the closest-approach watermark. The deferred flag set by
// EndTracking short-circuits everything else and is consumed exactly once.
func (c *Context) ShouldReset() bool {
	if c.deferredReset {
		c.deferredReset = false
		c.lowestDist = math.Inf(1)
		return true
	}

	v := c.rig.Velocity()
	if v.X() == 0 && v.Y() == 0 && v.Z() == 0 {
		c.lowestDist = math.Inf(1)
		return true
	}
	if c.movingAway() {
		return true
	}
	if c.badAngle() {
		c.lowestDist = math.Inf(1)
		return true
	}
	// jump detection
	if math.Round(v.Y()) >= 1 {
		c.lowestDist = math.Inf(1)
		return true
	}
	return false
}

// movingAway compares the current root-to-surface distance against the lowest
// distance seen since tracking began. Distances within the hysteresis band
// over the watermark count as noise, not retreat. With nothing tracked the
// character is still searching, never moving away.
func (c *Context) movingAway() bool {
	if c.tracked == nil {
		return false
	}
	d := c.rig.RootPosition().Sub(c.surfacePoint).Len()
	if d <= c.lowestDist {
		c.lowestDist = d
		return false
	}
	if d > c.lowestDist+c.cfg.Hysteresis {
		c.lowestDist = math.Inf(1)
		return true
	}
	return false
}

// badAngle reports whether the surface point lies behind the acting side's
// lateral axis: the root's right axis for the right side, its negation for
// the left. Undefined (false) with nothing tracked.
func (c *Context) badAngle() bool {
	if c.tracked == nil {
		return false
	}
	dir := c.surfacePoint.Sub(c.current.Shoulder())
	if dir.Len() == 0 {
		return false
	}
	lateral := c.rig.RootRight()
	if c.side == SideLeft {
		lateral = lateral.Mul(-1)
	}
	return lateral.Dot(dir.Normalize()) < 0
}
