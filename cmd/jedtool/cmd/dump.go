package cmd

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/jed"
	"github.com/spf13/cobra"
)

var showRows bool

var dumpCmd = &cobra.Command{
	Use:   "dump <jed-file>",
	Short: "Decode a JED file and display its fields",
	Long: `Decode and validate a JED file, then print the header fields and the data areas
with the note that preceded each of them.

Examples:
  jedtool dump design.jed
  jedtool dump --rows design.jed`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVarP(&showRows, "rows", "r", false,
		"show packed fuse rows")
}

func runDump(cmd *cobra.Command, args []string) error {
	doc, err := newParser().ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	printDocument(cmd.OutOrStdout(), args[0], doc, showRows)
	return nil
}

func printDocument(w io.Writer, name string, doc *jed.Document, rows bool) {
	fmt.Fprintf(w, "╔════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║ JED File Information                                           ║\n")
	fmt.Fprintf(w, "╠════════════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ File: %-56s ║\n", name)
	fmt.Fprintf(w, "╚════════════════════════════════════════════════════════════════╝\n\n")

	fmt.Fprintf(w, "Pin Count          : %d\n", doc.PinCount)
	fmt.Fprintf(w, "Fuse Count         : %d\n", doc.FuseCount)
	fmt.Fprintf(w, "Checksum           : 0x%04X\n", doc.Checksum)
	fmt.Fprintf(w, "User Code          : 0x%08X\n", doc.UserCode)
	fmt.Fprintf(w, "Security Settings  : %02X\n", doc.SecuritySetting)
	fmt.Fprintf(w, "Default Fuse State : %d\n", doc.DefaultFuseState)
	fmt.Fprintf(w, "Feature Row        : 0x%016X\n", doc.FeatureRow)
	fmt.Fprintf(w, "Feabits            : 0x%04X\n\n", doc.Feabits)

	fmt.Fprintf(w, "Areas: %d total\n", len(doc.Areas))
	for i, a := range doc.Areas {
		fmt.Fprintf(w, "  area[%d] offset %-8d len %-8d %s\n", i, a.Offset, a.Len, a.Note)
		if !rows {
			continue
		}
		for r, row := range a.Rows {
			fmt.Fprintf(w, "    row %-4d %4d bits  %X\n", r, row.Bits, row.Data)
		}
	}
}
