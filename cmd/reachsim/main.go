// reachsim runs the reach controller headless: a character walks up to a
// waist-high ledge, rests a hand on it, and walks away. State transitions and
// the final IK output are logged.
package main

import (
	"flag"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/reachout/config"
	"github.com/milk9111/reachout/logging"
	"github.com/milk9111/reachout/physics"
	"github.com/milk9111/reachout/reach"
)

const (
	shoulderHeight = 1.4
	shoulderSpan   = 0.2
	rootHalfHeight = 0.9
	rootHalfWidth  = 0.3
)

type character struct {
	pos     mgl64.Vec3
	vel     mgl64.Vec3
	forward mgl64.Vec3
}

func (c *character) update(t, dt float64, goalZ float64) {
	const walkSpeed, creepSpeed = 1.2, 0.2

	switch {
	case t >= 6.0:
		// done touching, walk away
		c.forward = mgl64.Vec3{0, 0, -1}
		c.vel = c.forward.Mul(walkSpeed)
	case goalZ-c.pos.Z() < 0.45:
		c.vel = c.forward.Mul(creepSpeed)
	default:
		c.vel = c.forward.Mul(walkSpeed)
	}
	c.pos = c.pos.Add(c.vel.Mul(dt))
}

func (c *character) right() mgl64.Vec3 {
	return mgl64.Vec3{0, 1, 0}.Cross(c.forward)
}

func main() {
	configPath := flag.String("config", "", "tuning yaml file (embedded defaults if empty)")
	watch := flag.Bool("watch", false, "hot-reload the tuning file while running")
	duration := flag.Float64("duration", 12, "simulated seconds")
	hz := flag.Float64("hz", 60, "simulation ticks per second")
	flag.Parse()

	logging.Init()
	log := logging.Log

	tuning := config.Default()
	if *configPath != "" {
		var err error
		tuning, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	world := physics.NewWorld()
	ledge := physics.NewBox(mgl64.Vec3{0.3, 0.9, 3.0}, mgl64.Vec3{1.0, 0.15, 0.4}, physics.LayerInteractable)
	world.Add(ledge)

	ch := &character{forward: mgl64.Vec3{0, 0, 1}}
	left := reach.NewHandTarget(mgl64.Vec3{-shoulderSpan, shoulderHeight - 0.4, 0.3}, mgl64.QuatIdent())
	right := reach.NewHandTarget(mgl64.Vec3{shoulderSpan, shoulderHeight - 0.4, 0.3}, mgl64.QuatIdent())

	rig := &reach.Rig{
		RootPosition: func() mgl64.Vec3 { return ch.pos },
		RootForward:  func() mgl64.Vec3 { return ch.forward },
		RootRight:    func() mgl64.Vec3 { return ch.right() },
		Velocity:     func() mgl64.Vec3 { return ch.vel },
		Left: reach.SideRig{
			Shoulder: func() mgl64.Vec3 { return ch.pos.Add(mgl64.Vec3{-shoulderSpan, shoulderHeight, 0}) },
			Target:   left,
		},
		Right: reach.SideRig{
			Shoulder: func() mgl64.Vec3 { return ch.pos.Add(mgl64.Vec3{shoulderSpan, shoulderHeight, 0}) },
			Target:   right,
		},
		Surfaces: world,
	}

	ctrl, err := reach.NewController(rig, tuning, physics.LayerInteractable)
	if err != nil {
		log.Fatal(err)
	}
	world.SetHandler(ctrl)

	if *watch && *configPath != "" {
		watcher, err := config.Watch(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		defer watcher.Close()
		go func() {
			for t := range watcher.Events {
				ctrl.SetTuning(t)
				log.Info("tuning reloaded")
			}
		}()
		go func() {
			for err := range watcher.Errors {
				log.WithError(err).Warn("tuning reload failed")
			}
		}()
	}

	// Detection volume size and offset are derived once; only the center
	// follows the character.
	rootBox := physics.Box{
		Center:      ch.pos.Add(mgl64.Vec3{0, rootHalfHeight, 0}),
		HalfExtents: mgl64.Vec3{rootHalfWidth, rootHalfHeight, rootHalfWidth},
	}
	volume := physics.DetectionVolumeFor(rootBox, tuning.ArmReach)
	volumeOffset := volume.Center.Sub(ch.pos)

	dt := 1.0 / *hz
	prev := ctrl.State()
	for t := 0.0; t < *duration; t += dt {
		ch.update(t, dt, ledge.Center().Z())
		volume.Center = ch.pos.Add(volumeOffset)
		world.Step(volume)
		ctrl.Tick(dt)

		if cur := ctrl.State(); cur != prev {
			log.WithField("t", t).Infof("state %s -> %s", prev, cur)
			prev = cur
		}
	}

	out := ctrl.Output()
	log.Infof("final state=%s side=%s weight=%.3f rotWeight=%.3f height=%.3f world=%v",
		ctrl.State(), out.Side, out.Weight, out.RotationWeight, out.HeightOffset, out.TargetWorld)
}
