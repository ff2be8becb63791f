package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceJED/internal/config"
	"github.com/OpenTraceLab/OpenTraceJED/pkg/jed"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var (
	// Global flags
	verbose    int
	configPath string
	colorMode  string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "jedtool",
	Short: "JEDEC fuse map decoder and programmer",
	Long: `jedtool decodes JEDEC JED fuse maps (GAL, CPLD and Lattice FPGA), checks their
checksum and fuse count, exports them and streams them through a JTAG adapter.

Examples:
  jedtool dump design.jed                        # Show the decoded fields
  jedtool check build/*.jed                      # Validate many files at once
  jedtool export --format msgpack -o d.mp d.jed  # Machine-readable export
  jedtool program --adapter simulator design.jed # Dry-run programming`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "verbose output (repeat for debug)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"configuration file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "",
		"colorize output (auto, on, off)")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	if colorMode != "" {
		cfg.Output.Color = colorMode
	}

	switch cfg.Output.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color %q (supported: auto, on, off)", cfg.Output.Color)
	}

	commonlog.Configure(verbose, nil)
	return nil
}

func newParser() *jed.Parser {
	return jed.NewParser(jed.WithVerbose(verbose > 0))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
