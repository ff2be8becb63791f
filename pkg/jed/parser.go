package jed

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger receiving parse diagnostics.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithVerbose reports intermediate values (declared and computed checksum,
// area sizes) at info level instead of debug level.
func WithVerbose(verbose bool) Option {
	return func(p *Parser) { p.verbose = verbose }
}

// Parser decodes JED fuse maps. A Parser holds no per-file state and may be
// reused, including from several goroutines.
type Parser struct {
	log     commonlog.Logger
	verbose bool
}

// NewParser creates a JED parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{log: commonlog.GetLogger("jed")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses and validates the JED file at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseString parses and validates JED text.
func (p *Parser) ParseString(input string) (*Document, error) {
	return p.Parse(strings.NewReader(input))
}

// ParseBytes parses and validates JED text.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	return p.Parse(bytes.NewReader(data))
}

// Parse reads a JED file from r and returns the decoded document. The
// document is returned only if every record decoded and both the checksum and
// the fuse count match their declared values.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	doc, err := p.parse(r)
	if err != nil {
		// callers own error reporting
		p.log.Debugf("parse failed: %s", err)
		return nil, err
	}
	return doc, nil
}

func (p *Parser) parse(r io.Reader) (*Document, error) {
	fr := NewFramer(r)
	if err := fr.SkipToSTX(); err != nil {
		return nil, err
	}

	st := parseState{doc: &Document{}}
	for {
		frame, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if frame.Empty() {
			p.log.Warningf("end marker (ETX) not found, stopped at line %d", frame.Line)
			break
		}

		rec, err := decodeRecord(frame)
		if err != nil {
			return nil, err
		}
		st.apply(rec, frame.Line)
		if _, ok := rec.(endRecord); ok {
			p.log.Debugf("end marker at line %d", frame.Line)
			break
		}
	}

	p.report(st.doc)
	if err := Validate(st.doc); err != nil {
		return nil, err
	}
	return st.doc, nil
}

func (p *Parser) report(doc *Document) {
	logf := p.log.Debugf
	if p.verbose {
		logf = p.log.Infof
	}
	logf("declared checksum %04x, computed %04x", doc.Checksum, doc.ComputedChecksum())
	for i, a := range doc.Areas {
		logf("area[%d] offset %d, %d fuses in %d rows %s", i, a.Offset, a.Len, len(a.Rows), a.Note)
	}
}

// parseState is the fold over decoded records. note is the text of the last
// NOTE record not yet claimed by an L record.
type parseState struct {
	doc  *Document
	note string
}

func (s *parseState) apply(rec record, line int) {
	switch r := rec.(type) {
	case endRecord:
	case noteRecord:
		s.note = r.text
	case fuseCountRecord:
		s.doc.FuseCount = r.count
		s.doc.fuseCountLine = line
	case pinCountRecord:
		s.doc.PinCount = r.count
	case securityRecord:
		s.doc.SecuritySetting = r.value
	case defaultFuseRecord:
		s.doc.DefaultFuseState = r.value
	case checksumRecord:
		s.doc.Checksum = r.value
		s.doc.checksumLine = line
	case featureRecord:
		s.doc.FeatureRow = r.row
		s.doc.Feabits = r.feabits
	case fuseDataRecord:
		area := r.area
		area.Note = s.note
		s.note = ""
		s.doc.Areas = append(s.doc.Areas, area)
	case userCodeRecord:
		s.doc.UserCode = r.value
	default:
		panic(fmt.Sprintf("jed: unhandled record %T", rec))
	}
}
