package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/fuseprog"
	"github.com/OpenTraceLab/OpenTraceJED/pkg/jtag"
	"github.com/spf13/cobra"
)

var (
	adapterType  string
	adapterSpeed int
	noVerify     bool
)

var programCmd = &cobra.Command{
	Use:   "program <jed-file>",
	Short: "Shift a validated fuse map through a JTAG adapter",
	Long: `Decode and validate a JED file, then shift every fuse row through the data
register of the selected adapter. Nothing is shifted unless the file is valid.

Examples:
  jedtool program design.jed
  jedtool program --adapter simulator --speed 6000000 design.jed
  jedtool program -v --no-verify design.jed`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(programCmd)

	programCmd.Flags().StringVarP(&adapterType, "adapter", "a", "",
		"JTAG adapter type (simulator, cmsis-dap, picoprobe)")
	programCmd.Flags().IntVar(&adapterSpeed, "speed", 0,
		"TCK frequency in Hz")
	programCmd.Flags().BoolVar(&noVerify, "no-verify", false,
		"skip comparing captured TDO with the written rows")
}

func runProgram(cmd *cobra.Command, args []string) error {
	opts := fuseprog.Options{
		SpeedHz:  cfg.Programmer.SpeedHz,
		Verify:   cfg.Programmer.Verify && !noVerify,
		Identify: true,
	}
	if cmd.Flags().Changed("speed") {
		opts.SpeedHz = adapterSpeed
	}
	kind := cfg.Programmer.Adapter
	if adapterType != "" {
		kind = adapterType
	}

	doc, err := newParser().ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	adapter, err := jtag.OpenAdapter(kind)
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}
	info, err := adapter.Info()
	if err != nil {
		return fmt.Errorf("failed to get adapter info: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Adapter: %s (%s)\n", info.Name, info.Vendor)
	if info.Notes != "" {
		fmt.Fprintf(out, "         %s\n", info.Notes)
	}

	res, err := fuseprog.New(adapter, opts).Program(ctx, doc)
	if err != nil {
		return fmt.Errorf("programming failed: %w", err)
	}

	fmt.Fprintf(out, "Device:  %s\n", res.IDCode)
	fmt.Fprintf(out, "Programmed %d bits in %d rows across %d areas", res.Bits, res.Rows, res.Areas)
	if opts.Verify {
		fmt.Fprint(out, " (verified)")
	}
	fmt.Fprintln(out)
	return nil
}
