// Package tap tracks the IEEE 1149.1 TAP controller so that a programmer can
// compute the TMS patterns it hands to a JTAG adapter.
package tap

import (
	"fmt"
)

// State represents one of the 16 TAP controller states.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR
	numStates
)

var stateNames = [numStates]string{
	"TestLogicReset", "RunTestIdle",
	"SelectDRScan", "CaptureDR", "ShiftDR", "Exit1DR", "PauseDR", "Exit2DR", "UpdateDR",
	"SelectIRScan", "CaptureIR", "ShiftIR", "Exit1IR", "PauseIR", "Exit2IR", "UpdateIR",
}

func (s State) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// transitions[s][tms] is the state entered from s on a TCK edge.
var transitions = [numStates][2]State{
	StateTestLogicReset: {StateRunTestIdle, StateTestLogicReset},
	StateRunTestIdle:    {StateRunTestIdle, StateSelectDRScan},
	StateSelectDRScan:   {StateCaptureDR, StateSelectIRScan},
	StateCaptureDR:      {StateShiftDR, StateExit1DR},
	StateShiftDR:        {StateShiftDR, StateExit1DR},
	StateExit1DR:        {StatePauseDR, StateUpdateDR},
	StatePauseDR:        {StatePauseDR, StateExit2DR},
	StateExit2DR:        {StateShiftDR, StateUpdateDR},
	StateUpdateDR:       {StateRunTestIdle, StateSelectDRScan},
	StateSelectIRScan:   {StateCaptureIR, StateTestLogicReset},
	StateCaptureIR:      {StateShiftIR, StateExit1IR},
	StateShiftIR:        {StateShiftIR, StateExit1IR},
	StateExit1IR:        {StatePauseIR, StateUpdateIR},
	StatePauseIR:        {StatePauseIR, StateExit2IR},
	StateExit2IR:        {StateShiftIR, StateUpdateIR},
	StateUpdateIR:       {StateRunTestIdle, StateSelectDRScan},
}

// NextState returns the state after one TCK cycle with the given TMS value.
// It panics on a state outside the diagram.
func NextState(current State, tms bool) State {
	if current >= numStates {
		panic(fmt.Sprintf("tap: unhandled state %d", current))
	}
	if tms {
		return transitions[current][1]
	}
	return transitions[current][0]
}

// Sequence is a TMS pattern and the states it walks through, starting with
// the state before the first bit.
type Sequence struct {
	TMS    []bool
	States []State
}

// Packed returns the TMS bits packed LSB first, the layout adapters expect.
func (s Sequence) Packed() []byte {
	return PackBools(s.TMS)
}

// PackBools packs bits LSB first, eight per byte.
func PackBools(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	buf := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return buf
}

// StateMachine tracks the TAP state locally. It performs no I/O.
type StateMachine struct {
	state State
}

// NewStateMachine creates a machine in Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// State reports the current state.
func (m *StateMachine) State() State {
	return m.state
}

// Clock advances one TCK cycle and returns the new state.
func (m *StateMachine) Clock(tms bool) State {
	m.state = NextState(m.state, tms)
	return m.state
}

// Reset clocks five TMS=1 cycles, which reaches Test-Logic-Reset from any
// state.
func (m *StateMachine) Reset() Sequence {
	seq := Sequence{
		TMS:    make([]bool, 5),
		States: make([]State, 6),
	}
	seq.States[0] = m.state
	for i := 0; i < 5; i++ {
		seq.TMS[i] = true
		seq.States[i+1] = m.Clock(true)
	}
	return seq
}

// GoTo moves the machine to target along the shortest path and returns it.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := computePath(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	m.state = target
	return path, nil
}

// Shift accounts for shifting bits through the current shift state: TMS stays
// low except on the last bit, which moves the machine to the matching Exit1
// state. The returned buffer is the packed TMS pattern for the adapter.
func (m *StateMachine) Shift(bits int) ([]byte, error) {
	if m.state != StateShiftDR && m.state != StateShiftIR {
		return nil, fmt.Errorf("tap: cannot shift in state %s", m.state)
	}
	if bits <= 0 {
		return nil, fmt.Errorf("tap: bits must be positive, got %d", bits)
	}
	tms := make([]bool, bits)
	tms[bits-1] = true
	m.Clock(true)
	return PackBools(tms), nil
}

// computePath runs a breadth-first search over the state diagram.
func computePath(from, to State) (Sequence, error) {
	if from >= numStates {
		return Sequence{}, fmt.Errorf("tap: invalid start state %d", from)
	}
	if to >= numStates {
		return Sequence{}, fmt.Errorf("tap: invalid target state %d", to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	type node struct {
		state State
		tms   []bool
		path  []State
	}
	queue := []node{{state: from, path: []State{from}}}
	var visited [numStates]bool
	visited[from] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, bit := range []bool{false, true} {
			next := NextState(cur.state, bit)
			if visited[next] {
				continue
			}
			visited[next] = true
			n := node{
				state: next,
				tms:   append(append([]bool{}, cur.tms...), bit),
				path:  append(append([]State{}, cur.path...), next),
			}
			if next == to {
				return Sequence{TMS: n.tms, States: n.path}, nil
			}
			queue = append(queue, n)
		}
	}
	return Sequence{}, fmt.Errorf("tap: no path from %s to %s", from, to)
}
