package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceJED/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <jed-file>",
	Short: "Write the decoded fuse map as JSON or MessagePack",
	Long: `Decode and validate a JED file and write the result in a machine-readable
format. The default format comes from [output].format in the configuration.

Examples:
  jedtool export design.jed
  jedtool export --format msgpack -o design.mp design.jed`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "",
		"output format (json, msgpack)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := cfg.Output.Format
	if exportFormat != "" {
		format = exportFormat
	}

	doc, err := newParser().ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	if exportOutput == "" {
		return export.Encode(cmd.OutOrStdout(), doc, format)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := export.Encode(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
