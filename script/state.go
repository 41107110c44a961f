// Package script runs tengo-scripted lifecycle states, so new reach
// behaviors can be prototyped without recompiling. A scripted state declares
// onEnter/update/onExit functions and requests transitions by name; facts
// about the world are pulled from a host-provided lookup.
package script

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/reachout/physics"
	"github.com/milk9111/reachout/reach"
)

const lifecycleDispatchScript = `
if __phase == "enter" {
	onEnter(__engine)
} else if __phase == "update" {
	update(__engine)
} else if __phase == "exit" {
	onExit(__engine)
}
`

// FactFunc resolves a named fact about the world (distances, velocity,
// tracking status). Unknown names resolve to undefined.
type FactFunc func(name string) any

// State is a tengo-backed fsm state. It satisfies the same contract as the
// built-in lifecycle states.
type State struct {
	id       reach.StateID
	compiled *tengo.Compiled
	data     *tengo.Map
	facts    FactFunc

	elapsed float64
	dt      float64
	pending reach.StateID
	events  map[string]bool
}

// New compiles src into a scripted state identified by id.
func New(id reach.StateID, src []byte, facts FactFunc) (*State, error) {
	full := string(src) + "\n" + lifecycleDispatchScript
	s := tengo.NewScript([]byte(full))
	_ = s.Add("__phase", "")
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__state", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile state %s: %w", id, err)
	}

	st := &State{
		id:       id,
		compiled: compiled,
		data:     &tengo.Map{Value: map[string]tengo.Object{}},
		facts:    facts,
		events:   map[string]bool{},
	}
	// Prime globals so the lifecycle functions exist before the first phase.
	if err := st.runPhase("noop"); err != nil {
		return nil, fmt.Errorf("script: prime state %s: %w", id, err)
	}
	return st, nil
}

// ID returns the state identifier.
func (s *State) ID() reach.StateID { return s.id }

// Enter resets timers and runs the script's onEnter.
func (s *State) Enter() {
	s.elapsed = 0
	s.pending = ""
	if err := s.runPhase("enter"); err != nil {
		fmt.Printf("script: state=%s onEnter error: %v\n", s.id, err)
	}
}

// Exit runs the script's onExit.
func (s *State) Exit() {
	if err := s.runPhase("exit"); err != nil {
		fmt.Printf("script: state=%s onExit error: %v\n", s.id, err)
	}
}

// Update advances the timer and runs the script's update.
func (s *State) Update(dt float64) {
	s.elapsed += dt
	s.dt = dt
	if err := s.runPhase("update"); err != nil {
		fmt.Printf("script: state=%s update error: %v\n", s.id, err)
	}
}

// Next reports the transition the script last requested, if any.
func (s *State) Next() reach.StateID {
	if s.pending != "" {
		return s.pending
	}
	return s.id
}

// OnOverlapBegin records an overlap-begin event for the script to consume.
func (s *State) OnOverlapBegin(c *physics.Collider) { s.recordEvent("overlap_begin", c) }

// OnOverlapStay records an overlap-stay event for the script to consume.
func (s *State) OnOverlapStay(c *physics.Collider) { s.recordEvent("overlap_stay", c) }

// OnOverlapEnd records an overlap-end event for the script to consume.
func (s *State) OnOverlapEnd(c *physics.Collider) { s.recordEvent("overlap_end", c) }

func (s *State) recordEvent(name string, c *physics.Collider) {
	s.events[name] = true
	if c != nil && c.Layer().Contains(physics.LayerInteractable) {
		s.events[name+"_interactable"] = true
	}
}

func (s *State) runPhase(phase string) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.buildEngine()); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.data); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *State) buildEngine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		s.pending = reach.StateID(name)
		return tengo.TrueValue, nil
	}}

	values["elapsed"] = &tengo.UserFunction{Name: "elapsed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.elapsed}, nil
	}}

	values["dt"] = &tengo.UserFunction{Name: "dt", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.dt}, nil
	}}

	values["fact"] = &tengo.UserFunction{Name: "fact", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.facts == nil || len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		return anyToObject(s.facts(name)), nil
	}}

	values["event"] = &tengo.UserFunction{Name: "event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		if s.events[strings.TrimSpace(objectAsString(args[0]))] {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["consume_event"] = &tengo.UserFunction{Name: "consume_event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if s.events[name] {
			delete(s.events, name)
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func anyToObject(v any) tengo.Object {
	switch val := v.(type) {
	case nil:
		return tengo.UndefinedValue
	case bool:
		if val {
			return tengo.TrueValue
		}
		return tengo.FalseValue
	case int:
		return &tengo.Int{Value: int64(val)}
	case int64:
		return &tengo.Int{Value: val}
	case float64:
		return &tengo.Float{Value: val}
	case string:
		return &tengo.String{Value: val}
	case mgl64.Vec3:
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: val.X()},
			&tengo.Float{Value: val.Y()},
			&tengo.Float{Value: val.Z()},
		}}
	default:
		return &tengo.String{Value: fmt.Sprintf("%v", val)}
	}
}
