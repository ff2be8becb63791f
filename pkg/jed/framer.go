package jed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	stx        = 0x02
	etx        = 0x03
	terminator = '*'
)

// Frame is one logical record: the physical lines read up to and including
// the one terminated by '*', with the terminator removed.
type Frame struct {
	Line  int // 1-based line number of Lines[0]
	Lines []string
}

// Empty reports whether the framer ran out of records.
func (f Frame) Empty() bool {
	return len(f.Lines) == 0
}

// Framer splits JED text into logical records. It is sequential and cannot be
// rewound.
type Framer struct {
	r    *bufio.Reader
	line int // physical lines consumed so far
}

// NewFramer creates a framer reading from r.
func NewFramer(r io.Reader) *Framer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Framer{r: br}
}

// SkipToSTX discards everything up to the start-of-text byte. When STX is
// directly followed by '*' the rest of that line is consumed as its own
// (empty) record, otherwise framing resumes right after STX.
func (f *Framer) SkipToSTX() error {
	for {
		c, err := f.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return ErrMissingSTX
		}
		if err != nil {
			return fmt.Errorf("jed: read: %w", err)
		}
		if c == stx {
			break
		}
		if c == '\n' {
			f.line++
		}
	}

	c, err := f.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jed: read: %w", err)
	}
	if c != terminator {
		return f.r.UnreadByte()
	}
	_, err = f.readLine()
	return err
}

// Next returns the next logical record. An empty physical line or the end of
// input stops collection; a Frame with no lines means there are no more
// records.
func (f *Framer) Next() (Frame, error) {
	frame := Frame{Line: f.line + 1}
	for {
		s, err := f.readLine()
		if err != nil {
			return Frame{}, err
		}
		if s == "" {
			break
		}
		if strings.HasSuffix(s, string(terminator)) {
			frame.Lines = append(frame.Lines, s[:len(s)-1])
			break
		}
		frame.Lines = append(frame.Lines, s)
	}
	return frame, nil
}

// readLine reads one physical line without its "\n" or "\r\n" ending. It
// returns "" once the input is exhausted.
func (f *Framer) readLine() (string, error) {
	s, err := f.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("jed: read: %w", err)
	}
	if s == "" {
		return "", nil
	}
	f.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}
