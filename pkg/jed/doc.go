// Package jed decodes JEDEC JED fuse maps as produced for GAL, CPLD and
// Lattice FPGA devices.
//
// A JED file is a sequence of '*'-terminated records following a
// start-of-text byte (0x02) and ending with an end-of-text byte (0x03):
//
//	\x02*
//	NOTE generated by ...*
//	QF64*              fuse count
//	QP20*              pin count
//	G0*                security setting
//	F0*                default fuse state
//	L00000             fuse data, one run of bits per line
//	0110110101...
//	0000000000...*
//	L00040 10110000*   fuse data, inline form
//	UH0000001A*        user code (UH hex, UA decimal, U binary)
//	E1000...           feature row
//	0101...*           feabits
//	C1A2F*             checksum of the packed fuse data
//	\x03
//
// Parser.Parse returns a Document only when every record decoded and the
// checksum and fuse count match the values the file declares.
package jed
