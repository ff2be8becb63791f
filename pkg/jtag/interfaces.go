package jtag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// InterfaceKind categorizes adapter families.
type InterfaceKind string

const (
	InterfaceKindCMSISDAP InterfaceKind = "cmsis-dap"
	InterfaceKindPico     InterfaceKind = "picoprobe"
	InterfaceKindSim      InterfaceKind = "simulator"
)

// InterfaceInfo describes a detected adapter.
type InterfaceInfo struct {
	Kind        InterfaceKind
	Description string
	VendorID    uint16
	ProductID   uint16
}

// Label returns a user-friendly description for the interface.
func (i InterfaceInfo) Label() string {
	if i.Description != "" {
		return i.Description
	}
	return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
}

// DiscoverInterfaces enumerates USB devices matching known probe VID/PID
// pairs. The simulator is always listed last so fuse maps can be dry-run
// without hardware.
func DiscoverInterfaces(ctx context.Context) ([]InterfaceInfo, error) {
	var results []InterfaceInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if ctx.Err() != nil {
			return false
		}
		if info, ok := classifyUSBDevice(uint16(desc.Vendor), uint16(desc.Product)); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && !errors.Is(err, gousb.ErrorAccess) {
		return results, fmt.Errorf("jtag: enumerate usb: %w", err)
	}

	results = append(results, InterfaceInfo{
		Kind:        InterfaceKindSim,
		Description: "Simulator (no hardware)",
	})
	return results, nil
}

func classifyUSBDevice(vid, pid uint16) (InterfaceInfo, bool) {
	for _, known := range knownProbes {
		if vid == known.VendorID && pid == known.ProductID {
			return known, true
		}
	}
	return InterfaceInfo{}, false
}

var knownProbes = []InterfaceInfo{
	{Kind: InterfaceKindCMSISDAP, VendorID: 0x2e8a, ProductID: 0x000c, Description: "Raspberry Pi CMSIS-DAP"},
	{Kind: InterfaceKindCMSISDAP, VendorID: 0x0d28, ProductID: 0x0204, Description: "DAPLink CMSIS-DAP"},
	{Kind: InterfaceKindCMSISDAP, VendorID: 0x1366, ProductID: 0x0101, Description: "SEGGER J-Link CMSIS-DAP"},
	{Kind: InterfaceKindPico, VendorID: 0x2e8a, ProductID: 0x000a, Description: "Raspberry Pi Pico (CDC/JTAG)"},
}

// SimIDCode is reported by the simulator returned from OpenAdapter, a Lattice
// MachXO2-256.
const SimIDCode = 0x012BA043

// OpenAdapter returns an adapter for the given kind name. Only the simulator
// has a working backend; hardware kinds report ErrNotImplemented.
func OpenAdapter(kind string) (Adapter, error) {
	switch InterfaceKind(kind) {
	case InterfaceKindSim, "sim":
		sim := NewSimAdapter(AdapterInfo{
			Name:         "Simulator",
			Vendor:       "OpenTraceLab",
			MinFrequency: 1_000,
			MaxFrequency: 100_000_000,
			Notes:        "echoes TDI on TDO",
		})
		sim.IDCode = SimIDCode
		return sim, nil
	case InterfaceKindCMSISDAP, "cmsisdap", InterfaceKindPico, "pico":
		return nil, fmt.Errorf("%s adapter: %w", kind, ErrNotImplemented)
	default:
		return nil, fmt.Errorf("unknown adapter type: %s (supported: simulator, cmsis-dap, picoprobe)", kind)
	}
}
