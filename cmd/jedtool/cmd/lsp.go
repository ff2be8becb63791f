package cmd

import (
	"github.com/OpenTraceLab/OpenTraceJED/internal/lsp"
	"github.com/spf13/cobra"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run a language server reporting JED errors to editors",
	Long: `Start a Language Server Protocol server on stdin/stdout. Open JED files are
validated on every change and the first error is published as a diagnostic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return lsp.NewServer(version).RunStdio()
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
