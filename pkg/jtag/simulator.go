package jtag

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/tap"
)

// ShiftRegion identifies whether a shift targets the instruction or the data
// register.
type ShiftRegion uint8

const (
	ShiftRegionIR ShiftRegion = iota
	ShiftRegionDR
)

func (r ShiftRegion) String() string {
	if r == ShiftRegionIR {
		return "IR"
	}
	return "DR"
}

// ShiftHook lets tests supply device-specific TDO data.
type ShiftHook func(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error)

// ShiftOp is one recorded shift request.
type ShiftOp struct {
	Region ShiftRegion
	TMS    []byte
	TDI    []byte
	Bits   int
}

// SimAdapter is an in-memory adapter with a single device behind it. Every TMS
// bit it receives is clocked through the device's TAP controller. TDO echoes
// TDI unless OnShift is set, except that when IDCode is non-zero the first
// Capture-DR after a reset loads it, and the following Shift-DR bits return it.
type SimAdapter struct {
	InfoData AdapterInfo
	SpeedHz  int
	IDCode   uint32

	OnShift ShiftHook

	tap        *tap.StateMachine
	idSelected bool
	captured   []bool

	shifts    []ShiftOp
	resets    int
	hardReset int
}

// NewSimAdapter constructs a simulator reporting info. Its TAP starts in
// Test-Logic-Reset.
func NewSimAdapter(info AdapterInfo) *SimAdapter {
	return &SimAdapter{InfoData: info, tap: tap.NewStateMachine()}
}

// Shifts returns the recorded shifts in order.
func (s *SimAdapter) Shifts() []ShiftOp {
	return append([]ShiftOp(nil), s.shifts...)
}

// LastShift returns the most recent shift, or the zero ShiftOp.
func (s *SimAdapter) LastShift() ShiftOp {
	if len(s.shifts) == 0 {
		return ShiftOp{}
	}
	return s.shifts[len(s.shifts)-1]
}

// ResetCounts reports how many resets were requested; hard is a subset of
// soft.
func (s *SimAdapter) ResetCounts() (soft, hard int) {
	return s.resets, s.hardReset
}

// TAPState reports the state of the simulated device's TAP controller.
func (s *SimAdapter) TAPState() tap.State {
	return s.tap.State()
}

func (s *SimAdapter) Info() (AdapterInfo, error) {
	return s.InfoData, nil
}

func (s *SimAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionIR, tms, tdi, bits)
}

func (s *SimAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionDR, tms, tdi, bits)
}

func (s *SimAdapter) ResetTAP(hard bool) error {
	s.resets++
	if hard {
		s.hardReset++
	}
	s.tap.Reset()
	s.enterReset()
	return nil
}

func (s *SimAdapter) SetSpeed(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	s.SpeedHz = hz
	return nil
}

func (s *SimAdapter) shift(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
	required, err := ValidateShiftBuffers(tms, tdi, bits)
	if err != nil {
		return nil, err
	}

	s.shifts = append(s.shifts, ShiftOp{
		Region: region,
		TMS:    append([]byte(nil), tms...),
		TDI:    append([]byte(nil), tdi...),
		Bits:   bits,
	})

	tdo := make([]byte, required)
	for i := 0; i < bits; i++ {
		out := bitAt(tdi, i)
		if s.tap.State() == tap.StateShiftDR && len(s.captured) > 0 {
			out = s.captured[0]
			s.captured = s.captured[1:]
		}
		if out {
			tdo[i/8] |= 1 << (i % 8)
		}
		s.clock(bitAt(tms, i))
	}

	if s.OnShift != nil {
		return s.OnShift(region, tms, tdi, bits)
	}
	return tdo, nil
}

// clock advances the device TAP one cycle and applies the register side
// effects of the state entered.
func (s *SimAdapter) clock(tms bool) {
	switch s.tap.Clock(tms) {
	case tap.StateTestLogicReset:
		s.enterReset()
	case tap.StateCaptureDR:
		s.captured = nil
		if s.idSelected {
			s.captured = make([]bool, 32)
			for i := range s.captured {
				s.captured[i] = s.IDCode&(1<<i) != 0
			}
			s.idSelected = false
		}
	case tap.StateCaptureIR:
		s.idSelected = false
	}
}

func (s *SimAdapter) enterReset() {
	s.idSelected = s.IDCode != 0
	s.captured = nil
}

// bitAt returns bit i of an LSB-first buffer; bits past its end read as 0.
func bitAt(buf []byte, i int) bool {
	if i/8 >= len(buf) {
		return false
	}
	return buf[i/8]&(1<<(i%8)) != 0
}
