package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/OpenTraceLab/OpenTraceJED/pkg/jed"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var checkJobs int

var checkCmd = &cobra.Command{
	Use:   "check <jed-file>...",
	Short: "Validate one or more JED files",
	Long: `Parse every file, verify its checksum and fuse count, and print one line per
file. The command fails if any file is invalid.

Examples:
  jedtool check design.jed
  jedtool check --jobs 4 build/*.jed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0,
		"files checked in parallel (default GOMAXPROCS)")
}

type checkResult struct {
	path string
	doc  *jed.Document
	err  error
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := checkFiles(cmd.Context(), newParser(), args, checkJobs)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	out := cmd.OutOrStdout()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", fail("FAIL"), r.path, r.err)
			continue
		}
		fmt.Fprintf(out, "%s   %s: %d fuses, %d areas, checksum 0x%04X\n",
			ok("OK"), r.path, r.doc.FuseCount, len(r.doc.Areas), r.doc.Checksum)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(results))
	}
	return nil
}

// checkFiles parses paths concurrently. Per-file failures are kept in the
// results; the returned error is only set on cancellation.
func checkFiles(ctx context.Context, parser *jed.Parser, paths []string, jobs int) ([]checkResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]checkResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := parser.ParseFile(path)
			results[i] = checkResult{path: path, doc: doc, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
