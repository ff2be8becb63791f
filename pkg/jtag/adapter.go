// Package jtag defines the adapter abstraction fuse programmers drive: a
// device that shifts bit streams through a target's Test Access Port.
package jtag

import (
	"errors"
	"fmt"
)

// AdapterInfo describes an adapter and the TCK range it accepts.
type AdapterInfo struct {
	Name         string
	Vendor       string
	MinFrequency int // Hertz, 0 if unbounded
	MaxFrequency int // Hertz, 0 if unbounded
	Notes        string
}

// ClampSpeed limits hz to the adapter's supported range.
func (i AdapterInfo) ClampSpeed(hz int) int {
	if i.MaxFrequency > 0 && hz > i.MaxFrequency {
		return i.MaxFrequency
	}
	if hz < i.MinFrequency {
		return i.MinFrequency
	}
	return hz
}

// Adapter abstracts a physical or virtual JTAG adapter. TMS and TDI buffers
// are packed LSB first; tdo has the same layout.
type Adapter interface {
	Info() (AdapterInfo, error)
	ShiftIR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ShiftDR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ResetTAP(hard bool) error
	SetSpeed(hz int) error
}

// ErrNotImplemented is returned by backends lacking a capability.
var ErrNotImplemented = errors.New("jtag: not implemented")

// ValidateShiftBuffers checks that non-empty TMS/TDI buffers hold at least
// bits bits and returns the number of bytes a buffer of that length needs.
func ValidateShiftBuffers(tms, tdi []byte, bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	required := (bits + 7) / 8
	if len(tms) > 0 && len(tms) < required {
		return 0, fmt.Errorf("jtag: tms buffer too short, need %d bytes", required)
	}
	if len(tdi) > 0 && len(tdi) < required {
		return 0, fmt.Errorf("jtag: tdi buffer too short, need %d bytes", required)
	}
	return required, nil
}
