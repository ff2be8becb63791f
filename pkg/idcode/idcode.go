// Package idcode decodes the 32-bit IEEE 1149.1 device identification
// register that a TAP selects after Test-Logic-Reset.
package idcode

import "fmt"

// IDCode is a decoded identification register.
type IDCode struct {
	Raw          uint32
	Version      uint8  // [31:28]
	PartNumber   uint16 // [27:12]
	Manufacturer uint16 // [11:1] JEP106 bank and id, parity stripped
}

// Parse splits raw into its fields.
func Parse(raw uint32) IDCode {
	return IDCode{
		Raw:          raw,
		Version:      uint8(raw >> 28),
		PartNumber:   uint16(raw >> 12),
		Manufacturer: uint16(raw>>1) & 0x7FF,
	}
}

// Valid reports whether the register looks like an IDCODE. Bit 0 is always
// set, and all ones means TDO was floating.
func (id IDCode) Valid() bool {
	return id.Raw&1 == 1 && id.Raw != 0xFFFFFFFF
}

// Vendor returns the name of the programmable-logic vendor, or a hex
// placeholder when the code is not known.
func (id IDCode) Vendor() string {
	if name, ok := vendors[id.Manufacturer]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%03X)", id.Manufacturer)
}

func (id IDCode) String() string {
	if !id.Valid() {
		return fmt.Sprintf("0x%08X (no IDCODE)", id.Raw)
	}
	return fmt.Sprintf("0x%08X (%s, part 0x%04X, version %d)",
		id.Raw, id.Vendor(), id.PartNumber, id.Version)
}

// vendors of JED-programmed parts, keyed by IDCODE bits [11:1].
var vendors = map[uint16]string{
	0x00F: "National",
	0x015: "Philips",
	0x01F: "Atmel",
	0x021: "Lattice",
	0x029: "Microchip",
	0x049: "Xilinx",
	0x06E: "Altera",
	0x0E1: "Cypress",
}
