package jed

// Document is the decoded content of a JED file.
type Document struct {
	FuseCount        int
	PinCount         int
	FeatureRow       uint64
	Feabits          uint64
	Checksum         uint16
	UserCode         uint32
	SecuritySetting  uint8
	DefaultFuseState uint8
	Areas            []DataArea

	// lines of the last QF and C records, for diagnostics
	fuseCountLine int
	checksumLine  int
}

// DataArea holds the fuses of one L record.
type DataArea struct {
	Offset int
	Len    int // fuse bits, not bytes
	Rows   []FuseRow
	Note   string // text of the NOTE record preceding the area, if any
}

// FuseRow is one run of fuse bits as it appeared in the file, packed LSB
// first.
type FuseRow struct {
	Bits int
	Data []byte
}

// Bytes returns the packed content of all rows of the area in file order.
func (a *DataArea) Bytes() []byte {
	var n int
	for _, r := range a.Rows {
		n += len(r.Data)
	}
	out := make([]byte, 0, n)
	for _, r := range a.Rows {
		out = append(out, r.Data...)
	}
	return out
}

func (a *DataArea) appendRun(run string) error {
	data, err := PackBits(run)
	if err != nil {
		return err
	}
	a.Rows = append(a.Rows, FuseRow{Bits: len(run), Data: data})
	a.Len += len(run)
	return nil
}

// ComputedChecksum sums every packed byte of every area, modulo 65536.
func (d *Document) ComputedChecksum() uint16 {
	var sum uint16
	for i := range d.Areas {
		for _, r := range d.Areas[i].Rows {
			for _, b := range r.Data {
				sum += uint16(b)
			}
		}
	}
	return sum
}

// ProgrammedFuses is the total length of all data areas.
func (d *Document) ProgrammedFuses() int {
	var n int
	for i := range d.Areas {
		n += d.Areas[i].Len
	}
	return n
}
