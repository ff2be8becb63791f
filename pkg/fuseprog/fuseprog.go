// Package fuseprog streams the fuse rows of a validated JED document through
// a JTAG adapter.
package fuseprog

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceJED/pkg/jed"
	"github.com/OpenTraceLab/OpenTraceJED/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceJED/pkg/tap"
	"github.com/tliron/commonlog"
)

// Options configures a Programmer.
type Options struct {
	// SpeedHz is the TCK frequency; zero keeps the adapter default.
	SpeedHz int
	// Verify compares the TDO captured during each row with the row itself.
	Verify bool
	// Identify reads the IDCODE register before the first row.
	Identify bool
	Logger   commonlog.Logger
}

// Result summarizes a programming run.
type Result struct {
	Areas  int
	Rows   int
	Bits   int
	IDCode idcode.IDCode // zero unless Options.Identify
}

// VerifyError reports a row whose captured TDO did not match.
type VerifyError struct {
	Offset int // fuse offset of the area
	Row    int
	Want   []byte
	Got    []byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("fuseprog: verify failed at area offset %d row %d: wrote %X, read %X",
		e.Offset, e.Row, e.Want, e.Got)
}

// Programmer drives an adapter with the rows of a document. It is not safe for
// concurrent use.
type Programmer struct {
	adapter jtag.Adapter
	tap     *tap.StateMachine
	opts    Options
	log     commonlog.Logger
}

// New creates a programmer for adapter.
func New(adapter jtag.Adapter, opts Options) *Programmer {
	log := opts.Logger
	if log == nil {
		log = commonlog.GetLogger("fuseprog")
	}
	return &Programmer{
		adapter: adapter,
		tap:     tap.NewStateMachine(),
		opts:    opts,
		log:     log,
	}
}

// Program resets the TAP and shifts every row of every area through the data
// register, returning to Run-Test/Idle after each row. It stops at the first
// adapter error, verify mismatch or context cancellation.
func (p *Programmer) Program(ctx context.Context, doc *jed.Document) (Result, error) {
	var res Result
	if doc == nil {
		return res, errors.New("fuseprog: nil document")
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := p.setSpeed(); err != nil {
		return res, err
	}
	if err := p.reset(); err != nil {
		return res, err
	}
	if err := p.gotoState(tap.StateRunTestIdle); err != nil {
		return res, err
	}

	if p.opts.Identify {
		id, err := p.readIDCode()
		if err != nil {
			return res, err
		}
		res.IDCode = id
		p.log.Infof("device %s", id)
	}

	for i := range doc.Areas {
		area := &doc.Areas[i]
		p.log.Infof("area[%d] offset %d: %d fuses in %d rows", i, area.Offset, area.Len, len(area.Rows))
		for r, row := range area.Rows {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if row.Bits == 0 {
				continue
			}
			if err := p.shiftRow(area.Offset, r, row); err != nil {
				return res, err
			}
			res.Rows++
			res.Bits += row.Bits
		}
		res.Areas++
	}

	p.log.Infof("programmed %d bits in %d rows", res.Bits, res.Rows)
	return res, nil
}

func (p *Programmer) setSpeed() error {
	if p.opts.SpeedHz <= 0 {
		return nil
	}
	info, err := p.adapter.Info()
	if err != nil {
		return fmt.Errorf("fuseprog: adapter info: %w", err)
	}
	hz := info.ClampSpeed(p.opts.SpeedHz)
	if hz != p.opts.SpeedHz {
		p.log.Warningf("%s supports %d-%d Hz, using %d Hz", info.Name, info.MinFrequency, info.MaxFrequency, hz)
	}
	if err := p.adapter.SetSpeed(hz); err != nil {
		return fmt.Errorf("fuseprog: set speed: %w", err)
	}
	return nil
}

// reset requests an adapter reset, then clocks five TMS=1 cycles so that the
// device reaches Test-Logic-Reset even if the adapter cannot reset it.
func (p *Programmer) reset() error {
	if err := p.adapter.ResetTAP(false); err != nil && !errors.Is(err, jtag.ErrNotImplemented) {
		return fmt.Errorf("fuseprog: reset: %w", err)
	}
	return p.apply(p.tap.Reset())
}

// gotoState clocks the shortest TMS path to target through the adapter.
func (p *Programmer) gotoState(target tap.State) error {
	seq, err := p.tap.GoTo(target)
	if err != nil {
		return err
	}
	return p.apply(seq)
}

// apply sends a navigation sequence with TDI held low. Sequences starting in
// the IR column go through ShiftIR, everything else through ShiftDR.
func (p *Programmer) apply(seq tap.Sequence) error {
	if len(seq.TMS) == 0 {
		return nil
	}
	tms := seq.Packed()
	tdi := make([]byte, len(tms))
	var err error
	if isIRState(seq.States[0]) {
		_, err = p.adapter.ShiftIR(tms, tdi, len(seq.TMS))
	} else {
		_, err = p.adapter.ShiftDR(tms, tdi, len(seq.TMS))
	}
	if err != nil {
		return fmt.Errorf("fuseprog: move to %s: %w", seq.States[len(seq.States)-1], err)
	}
	return nil
}

func isIRState(s tap.State) bool {
	switch s {
	case tap.StateSelectIRScan, tap.StateCaptureIR, tap.StateShiftIR,
		tap.StateExit1IR, tap.StatePauseIR, tap.StateExit2IR, tap.StateUpdateIR:
		return true
	}
	return false
}

// scanDR walks to Shift-DR, shifts tdi and returns to Run-Test/Idle.
func (p *Programmer) scanDR(tdi []byte, bits int) ([]byte, error) {
	if err := p.gotoState(tap.StateShiftDR); err != nil {
		return nil, err
	}
	tms, err := p.tap.Shift(bits)
	if err != nil {
		return nil, err
	}
	tdo, err := p.adapter.ShiftDR(tms, tdi, bits)
	if err != nil {
		return nil, err
	}
	if err := p.gotoState(tap.StateRunTestIdle); err != nil {
		return nil, err
	}
	return tdo, nil
}

// readIDCode shifts 32 bits out of the data register, which holds the IDCODE
// right after a reset.
func (p *Programmer) readIDCode() (idcode.IDCode, error) {
	tdo, err := p.scanDR(make([]byte, 4), 32)
	if err != nil {
		return idcode.IDCode{}, fmt.Errorf("fuseprog: read idcode: %w", err)
	}
	if len(tdo) < 4 {
		return idcode.IDCode{}, fmt.Errorf("fuseprog: read idcode: short capture (%d bytes)", len(tdo))
	}
	return idcode.Parse(binary.LittleEndian.Uint32(tdo)), nil
}

func (p *Programmer) shiftRow(offset, index int, row jed.FuseRow) error {
	tdo, err := p.scanDR(row.Data, row.Bits)
	if err != nil {
		return fmt.Errorf("fuseprog: area offset %d row %d: %w", offset, index, err)
	}

	if p.opts.Verify {
		want := maskTail(row.Data, row.Bits)
		got := maskTail(tdo, row.Bits)
		if !bytes.Equal(want, got) {
			return &VerifyError{Offset: offset, Row: index, Want: want, Got: got}
		}
	}
	return nil
}

// maskTail returns the first ceil(bits/8) bytes of buf with the unused high
// bits of the last byte cleared.
func maskTail(buf []byte, bits int) []byte {
	n := (bits + 7) / 8
	out := make([]byte, n)
	copy(out, buf)
	if rem := bits % 8; rem != 0 {
		out[n-1] &= byte(1)<<rem - 1
	}
	return out
}
