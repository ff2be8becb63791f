package jed

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// record is the decoded form of one Frame. The set of implementations is
// closed; apply in parser.go handles every one of them.
type record interface{ isRecord() }

type (
	noteRecord        struct{ text string }
	fuseCountRecord   struct{ count int }
	pinCountRecord    struct{ count int }
	securityRecord    struct{ value uint8 }
	defaultFuseRecord struct{ value uint8 }
	checksumRecord    struct{ value uint16 }
	featureRecord     struct{ row, feabits uint64 }
	fuseDataRecord    struct{ area DataArea }
	userCodeRecord    struct{ value uint32 }
	endRecord         struct{}
)

func (noteRecord) isRecord()        {}
func (fuseCountRecord) isRecord()   {}
func (pinCountRecord) isRecord()    {}
func (securityRecord) isRecord()    {}
func (defaultFuseRecord) isRecord() {}
func (checksumRecord) isRecord()    {}
func (featureRecord) isRecord()     {}
func (fuseDataRecord) isRecord()    {}
func (userCodeRecord) isRecord()    {}
func (endRecord) isRecord()         {}

// decodeRecord classifies a frame by the first character of its first line.
func decodeRecord(f Frame) (record, error) {
	first := f.Lines[0]
	if first == "" {
		return nil, recordErr(f, "unrecognized record")
	}

	switch first[0] {
	case 'N':
		// "N text" or "NOTE text"
		return noteRecord{text: first[strings.IndexByte(first, ' ')+1:]}, nil
	case 'Q':
		return decodeQualifier(f)
	case 'G':
		v, err := digit(first[1:], 9)
		if err != nil {
			return nil, recordErr(f, "security setting: "+err.Error())
		}
		return securityRecord{value: v}, nil
	case 'F':
		v, err := digit(first[1:], 1)
		if err != nil {
			return nil, recordErr(f, "default fuse state: "+err.Error())
		}
		return defaultFuseRecord{value: v}, nil
	case 'C':
		s := strings.TrimSpace(first[1:])
		if s == "" || len(s) > 4 {
			return nil, recordErr(f, "checksum must be 1 to 4 hex digits")
		}
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, recordErr(f, "checksum must be 1 to 4 hex digits")
		}
		return checksumRecord{value: uint16(v)}, nil
	case 'E':
		return decodeFeature(f)
	case 'L':
		return decodeFuseData(f)
	case 'U':
		return decodeUserCode(f)
	case etx:
		return endRecord{}, nil
	default:
		return nil, recordErr(f, "unrecognized record")
	}
}

func decodeQualifier(f Frame) (record, error) {
	first := f.Lines[0]
	if len(first) < 2 || (first[1] != 'F' && first[1] != 'P') {
		return nil, recordErr(f, "unknown qualifier")
	}
	n, err := strconv.Atoi(strings.TrimSpace(first[2:]))
	if err != nil || n < 0 {
		return nil, recordErr(f, "count is not a decimal number")
	}
	if first[1] == 'F' {
		return fuseCountRecord{count: n}, nil
	}
	return pinCountRecord{count: n}, nil
}

// decodeFeature reads the two-line E record: feature row, then feabits.
func decodeFeature(f Frame) (record, error) {
	if len(f.Lines) != 2 {
		return nil, recordErr(f, "feature record must span two lines")
	}
	row, err := bitsLSB(strings.TrimSpace(f.Lines[0][1:]), 64)
	if err != nil {
		return nil, recordErr(f, "feature row: "+err.Error())
	}
	feabits, err := bitsLSB(strings.TrimSpace(f.Lines[1]), 64)
	if err != nil {
		return nil, recordErr(f, "feabits: "+err.Error())
	}
	return featureRecord{row: row, feabits: feabits}, nil
}

func decodeFuseData(f Frame) (record, error) {
	h, err := fuseHeaderParser.ParseString("", f.Lines[0])
	if err != nil {
		return nil, recordErr(f, "fuse data header: "+err.Error())
	}
	offset, err := strconv.Atoi(h.Offset)
	if err != nil {
		return nil, recordErr(f, "fuse offset out of range")
	}

	area := DataArea{Offset: offset}
	if h.Bits != "" {
		if len(f.Lines) > 1 {
			return nil, recordErr(f, "inline fuse data followed by more lines")
		}
		if err := area.appendRun(h.Bits); err != nil {
			return nil, recordErr(f, err.Error())
		}
		return fuseDataRecord{area: area}, nil
	}

	for i, line := range f.Lines[1:] {
		run := strings.TrimSpace(line)
		if run == "" {
			continue
		}
		if err := area.appendRun(run); err != nil {
			return nil, &RecordError{Line: f.Line + 1 + i, Record: line, Reason: err.Error()}
		}
	}
	return fuseDataRecord{area: area}, nil
}

// decodeUserCode handles UH<hex>, UA<decimal> and U<binary, MSB first>.
func decodeUserCode(f Frame) (record, error) {
	first := f.Lines[0]
	if len(first) < 2 {
		return nil, recordErr(f, "missing user code")
	}

	var (
		v   uint64
		err error
	)
	switch first[1] {
	case 'H':
		v, err = strconv.ParseUint(strings.TrimSpace(first[2:]), 16, 64)
	case 'A':
		v, err = strconv.ParseUint(strings.TrimSpace(first[2:]), 10, 64)
	default:
		v, err = bitsMSB(strings.TrimSpace(first[1:]), 32)
	}
	if err != nil {
		return nil, recordErr(f, "user code: "+err.Error())
	}
	code, err := safecast.Conv[uint32](v)
	if err != nil {
		return nil, recordErr(f, "user code does not fit 32 bits")
	}
	return userCodeRecord{value: code}, nil
}

// digit parses a payload consisting of exactly one decimal digit no greater
// than limit.
func digit(s string, limit uint8) (uint8, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 || s[0] < '0' || s[0] > '0'+limit {
		return 0, fmt.Errorf("want a single digit 0-%d", limit)
	}
	return s[0] - '0', nil
}
