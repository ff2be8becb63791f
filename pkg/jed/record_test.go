package jed

import (
	"errors"
	"reflect"
	"testing"
)

func frameOf(lines ...string) Frame {
	return Frame{Line: 7, Lines: lines}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  record
	}{
		{name: "note short", frame: frameOf("N hello world"), want: noteRecord{text: "hello world"}},
		{name: "note long", frame: frameOf("NOTE DEVICE NAME: LCMXO2"), want: noteRecord{text: "DEVICE NAME: LCMXO2"}},
		{name: "note without text", frame: frameOf("N"), want: noteRecord{text: "N"}},
		{name: "fuse count", frame: frameOf("QF343936"), want: fuseCountRecord{count: 343936}},
		{name: "pin count", frame: frameOf("QP132"), want: pinCountRecord{count: 132}},
		{name: "security", frame: frameOf("G1"), want: securityRecord{value: 1}},
		{name: "default fuse", frame: frameOf("F0"), want: defaultFuseRecord{value: 0}},
		{name: "checksum", frame: frameOf("C1A2f"), want: checksumRecord{value: 0x1A2F}},
		{name: "feature", frame: frameOf("E0100", "1001"), want: featureRecord{row: 2, feabits: 9}},
		{name: "user code hex", frame: frameOf("UH1A"), want: userCodeRecord{value: 26}},
		{name: "user code decimal", frame: frameOf("UA26"), want: userCodeRecord{value: 26}},
		{name: "user code binary", frame: frameOf("U101"), want: userCodeRecord{value: 5}},
		{name: "end", frame: frameOf("\x03"), want: endRecord{}},
		{name: "end with transmission checksum", frame: frameOf("\x031234"), want: endRecord{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecord(tt.frame)
			if err != nil {
				t.Fatalf("decodeRecord returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("decodeRecord = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeFuseData(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  DataArea
	}{
		{
			name:  "inline",
			frame: frameOf("L0 00000000"),
			want: DataArea{Offset: 0, Len: 8, Rows: []FuseRow{
				{Bits: 8, Data: []byte{0x00}},
			}},
		},
		{
			name:  "inline with stray terminator",
			frame: frameOf("L16 1011*"),
			want: DataArea{Offset: 16, Len: 4, Rows: []FuseRow{
				{Bits: 4, Data: []byte{0x0D}},
			}},
		},
		{
			name:  "multi line with leading zero offset",
			frame: frameOf("L000128", "10110000", "", "1111111111"),
			want: DataArea{Offset: 128, Len: 18, Rows: []FuseRow{
				{Bits: 8, Data: []byte{0x0D}},
				{Bits: 10, Data: []byte{0xFF, 0x03}},
			}},
		},
		{
			name:  "offset only",
			frame: frameOf("L42"),
			want:  DataArea{Offset: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecord(tt.frame)
			if err != nil {
				t.Fatalf("decodeRecord returned error: %v", err)
			}
			rec, ok := got.(fuseDataRecord)
			if !ok {
				t.Fatalf("decodeRecord = %T, want fuseDataRecord", got)
			}
			if !reflect.DeepEqual(rec.area, tt.want) {
				t.Fatalf("area = %+v, want %+v", rec.area, tt.want)
			}
		})
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		wantLine int
	}{
		{name: "unknown qualifier", frame: frameOf("QX12"), wantLine: 7},
		{name: "bare qualifier", frame: frameOf("Q"), wantLine: 7},
		{name: "bad fuse count", frame: frameOf("QFabc"), wantLine: 7},
		{name: "unrecognized", frame: frameOf("Z123"), wantLine: 7},
		{name: "empty record", frame: frameOf(""), wantLine: 7},
		{name: "security not a digit", frame: frameOf("GA"), wantLine: 7},
		{name: "security missing", frame: frameOf("G"), wantLine: 7},
		{name: "default fuse not a bit", frame: frameOf("F2"), wantLine: 7},
		{name: "checksum too long", frame: frameOf("C12345"), wantLine: 7},
		{name: "checksum not hex", frame: frameOf("CXYZ"), wantLine: 7},
		{name: "feature single line", frame: frameOf("E0101"), wantLine: 7},
		{name: "feature bad bit", frame: frameOf("E0121", "0"), wantLine: 7},
		{name: "fuse data bad bit", frame: frameOf("L0 0121"), wantLine: 7},
		{name: "fuse data extra token", frame: frameOf("L0 0101 1111"), wantLine: 7},
		{name: "fuse data inline and continued", frame: frameOf("L0 0101", "1111"), wantLine: 7},
		{name: "fuse data bad continuation", frame: frameOf("L0", "0101", "01x1"), wantLine: 9},
		{name: "user code too wide", frame: frameOf("UH1FFFFFFFF"), wantLine: 7},
		{name: "user code bad binary", frame: frameOf("U1021"), wantLine: 7},
		{name: "user code empty", frame: frameOf("U"), wantLine: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord(tt.frame)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrGrammar) {
				t.Fatalf("error %v does not wrap ErrGrammar", err)
			}
			if got := ErrorLine(err); got != tt.wantLine {
				t.Fatalf("ErrorLine = %d, want %d", got, tt.wantLine)
			}
		})
	}
}
