package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/jtag"
	"github.com/spf13/cobra"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List available JTAG adapters",
	Long: `Scan the host for JTAG probes (CMSIS-DAP, PicoProbe) and print the detected
transports. The simulator is always listed.`,
	Args: cobra.NoArgs,
	RunE: runAdapters,
}

func init() {
	rootCmd.AddCommand(adaptersCmd)
}

func runAdapters(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	infos, err := jtag.DiscoverInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("discover adapters: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Detected JTAG adapters:")
	for _, iface := range infos {
		if iface.Kind == jtag.InterfaceKindSim {
			fmt.Fprintf(out, "  - %s [%s]\n", iface.Label(), iface.Kind)
			continue
		}
		fmt.Fprintf(out, "  - %s [%s] (VID:PID %04X:%04X)\n", iface.Label(), iface.Kind, iface.VendorID, iface.ProductID)
	}
	return nil
}
