// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// State is a TAP state in the standard IEEE 1149.1 graph (spec.md §3).
type State int

const (
	StateReset State = iota
	StateIdle
	StateDRSelect
	StateDRCapture
	StateDRShift
	StateDRExit1
	StateDRPause
	StateDRExit2
	StateDRUpdate
	StateIRSelect
	StateIRCapture
	StateIRShift
	StateIRExit1
	StateIRPause
	StateIRExit2
	StateIRUpdate
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "RESET"
	case StateIdle:
		return "IDLE"
	case StateDRSelect:
		return "DRSELECT"
	case StateDRCapture:
		return "DRCAPTURE"
	case StateDRShift:
		return "DRSHIFT"
	case StateDRExit1:
		return "DREXIT1"
	case StateDRPause:
		return "DRPAUSE"
	case StateDRExit2:
		return "DREXIT2"
	case StateDRUpdate:
		return "DRUPDATE"
	case StateIRSelect:
		return "IRSELECT"
	case StateIRCapture:
		return "IRCAPTURE"
	case StateIRShift:
		return "IRSHIFT"
	case StateIRExit1:
		return "IREXIT1"
	case StateIRPause:
		return "IRPAUSE"
	case StateIRExit2:
		return "IREXIT2"
	case StateIRUpdate:
		return "IRUPDATE"
	default:
		return "UNKNOWN"
	}
}

// TransitionOracle is the "pure function provided by the host" spec.md §1
// assumes: given the current state and a TMS value, what state results
// (Next); and given two states, what TMS bit sequence moves between them
// (Path). SPEC_FULL.md §2 plays host for this module by shipping the
// standard implementation below, but any host may substitute its own table
// by implementing this interface.
type TransitionOracle interface {
	Next(from State, tms bool) State
	Path(from, to State) []bool
}

// StandardTransitions implements TransitionOracle for the unmodified IEEE
// 1149.1 TAP graph.
type StandardTransitions struct{}

func (StandardTransitions) Next(from State, tms bool) State {
	idx := 0
	if tms {
		idx = 1
	}
	return standardNextState[from][idx]
}

// Path performs a breadth-first search over Next to find the shortest TMS
// bit sequence from "from" to "to". The graph is tiny (16 states) so this is
// cheap and, being a pure function of the fixed graph, deterministic.
//
// Reset is special-cased to the standard TMS=1x5 sequence regardless of the
// starting state (spec.md §4.2): Test-Logic-Reset must be asserted, not
// merely reached by the shortest path, so a caller already sitting at Reset
// still gets the full five pulses.
func (o StandardTransitions) Path(from, to State) []bool {
	if to == StateReset {
		return []bool{true, true, true, true, true}
	}
	if from == to {
		return nil
	}

	type node struct {
		state State
		path  []bool
	}

	visited := map[State]bool{from: true}
	queue := []node{{from, nil}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, tms := range [2]bool{false, true} {
			next := o.Next(cur.state, tms)
			if next == to {
				path := make([]bool, len(cur.path)+1)
				copy(path, cur.path)
				path[len(cur.path)] = tms
				return path
			}
			if !visited[next] {
				visited[next] = true
				path := make([]bool, len(cur.path)+1)
				copy(path, cur.path)
				path[len(cur.path)] = tms
				queue = append(queue, node{next, path})
			}
		}
	}

	// Unreachable for the standard graph; any state can reach any other.
	return nil
}

var standardNextState = map[State][2]State{
	StateReset:     {StateIdle, StateReset},
	StateIdle:      {StateIdle, StateDRSelect},
	StateDRSelect:  {StateDRCapture, StateIRSelect},
	StateDRCapture: {StateDRShift, StateDRExit1},
	StateDRShift:   {StateDRShift, StateDRExit1},
	StateDRExit1:   {StateDRPause, StateDRUpdate},
	StateDRPause:   {StateDRPause, StateDRExit2},
	StateDRExit2:   {StateDRShift, StateDRUpdate},
	StateDRUpdate:  {StateIdle, StateDRSelect},
	StateIRSelect:  {StateIRCapture, StateReset},
	StateIRCapture: {StateIRShift, StateIRExit1},
	StateIRShift:   {StateIRShift, StateIRExit1},
	StateIRExit1:   {StateIRPause, StateIRUpdate},
	StateIRPause:   {StateIRPause, StateIRExit2},
	StateIRExit2:   {StateIRShift, StateIRUpdate},
	StateIRUpdate:  {StateIdle, StateDRSelect},
}
