// Package export writes decoded fuse maps in machine-readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/jed"
	"github.com/vmihailenco/msgpack/v5"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// File is the exported form of a jed.Document.
type File struct {
	FuseCount        int    `json:"fuse_count" msgpack:"fuse_count"`
	PinCount         int    `json:"pin_count" msgpack:"pin_count"`
	FeatureRow       uint64 `json:"feature_row" msgpack:"feature_row"`
	Feabits          uint64 `json:"feabits" msgpack:"feabits"`
	Checksum         uint16 `json:"checksum" msgpack:"checksum"`
	UserCode         uint32 `json:"user_code" msgpack:"user_code"`
	SecuritySetting  uint8  `json:"security_setting" msgpack:"security_setting"`
	DefaultFuseState uint8  `json:"default_fuse_state" msgpack:"default_fuse_state"`
	Areas            []Area `json:"areas" msgpack:"areas"`
}

// Area is one exported data area.
type Area struct {
	Offset int    `json:"offset" msgpack:"offset"`
	Len    int    `json:"len" msgpack:"len"`
	Note   string `json:"note,omitempty" msgpack:"note,omitempty"`
	Rows   []Row  `json:"rows" msgpack:"rows"`
}

// Row is one packed run of fuse bits.
type Row struct {
	Bits int    `json:"bits" msgpack:"bits"`
	Data []byte `json:"data" msgpack:"data"`
}

// FromDocument converts doc to its exported form.
func FromDocument(doc *jed.Document) File {
	f := File{
		FuseCount:        doc.FuseCount,
		PinCount:         doc.PinCount,
		FeatureRow:       doc.FeatureRow,
		Feabits:          doc.Feabits,
		Checksum:         doc.Checksum,
		UserCode:         doc.UserCode,
		SecuritySetting:  doc.SecuritySetting,
		DefaultFuseState: doc.DefaultFuseState,
		Areas:            make([]Area, 0, len(doc.Areas)),
	}
	for _, a := range doc.Areas {
		area := Area{Offset: a.Offset, Len: a.Len, Note: a.Note, Rows: make([]Row, 0, len(a.Rows))}
		for _, r := range a.Rows {
			area.Rows = append(area.Rows, Row{Bits: r.Bits, Data: r.Data})
		}
		f.Areas = append(f.Areas, area)
	}
	return f
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc *jed.Document, format string) error {
	f := FromDocument(doc)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(f)
	default:
		return fmt.Errorf("export: unknown format %q (supported: json, msgpack)", format)
	}
}

// Decode reads a File previously written by Encode.
func Decode(r io.Reader, format string) (File, error) {
	var f File
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&f)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&f)
	default:
		return File{}, fmt.Errorf("export: unknown format %q (supported: json, msgpack)", format)
	}
	if err != nil {
		return File{}, fmt.Errorf("export: decode %s: %w", format, err)
	}
	return f, nil
}
