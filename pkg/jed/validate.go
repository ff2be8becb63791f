package jed

// Validate recomputes the checksum and the programmed fuse count of doc and
// compares them with the declared C and QF values.
func Validate(doc *Document) error {
	if sum := doc.ComputedChecksum(); sum != doc.Checksum {
		return &ChecksumError{Line: doc.checksumLine, Declared: doc.Checksum, Computed: sum}
	}
	if n := doc.ProgrammedFuses(); n != doc.FuseCount {
		return &FuseCountError{Line: doc.fuseCountLine, Declared: doc.FuseCount, Computed: n}
	}
	return nil
}
