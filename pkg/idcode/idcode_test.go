package idcode

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     uint32
		version uint8
		part    uint16
		vendor  string
		valid   bool
	}{
		{"lattice machxo2", 0x012BA043, 0x0, 0x12BA, "Lattice", true},
		{"lattice ecp5", 0x41111043, 0x4, 0x1111, "Lattice", true},
		{"xilinx coolrunner", 0x06E5E093, 0x0, 0x6E5E, "Xilinx", true},
		{"altera max", 0x020A50DD, 0x0, 0x20A5, "Altera", true},
		{"atmel atf15", 0x0150403F, 0x0, 0x1504, "Atmel", true},
		{"floating tdo", 0xFFFFFFFF, 0xF, 0xFFFF, "Unknown (0x7FF)", false},
		{"bypass", 0x00000000, 0x0, 0x0000, "Unknown (0x000)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Parse(tt.raw)
			if id.Version != tt.version {
				t.Errorf("Version = %d, want %d", id.Version, tt.version)
			}
			if id.PartNumber != tt.part {
				t.Errorf("PartNumber = 0x%04X, want 0x%04X", id.PartNumber, tt.part)
			}
			if got := id.Vendor(); got != tt.vendor {
				t.Errorf("Vendor() = %q, want %q", got, tt.vendor)
			}
			if id.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v", id.Valid(), tt.valid)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got, want := Parse(0x012BA043).String(), "0x012BA043 (Lattice, part 0x12BA, version 0)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := Parse(0).String(), "0x00000000 (no IDCODE)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
