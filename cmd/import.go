package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

var flagImportDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Bulk-add entries from JSONL files",
	Long: "Reads one JSON object per line with the fields of `rupee add`:\n" +
		"  {\"domain\":\"expense\",\"type\":\"expense\",\"amount\":450,\"category\":\"Food\",\"date\":\"2026-10-01\"}\n" +
		"A directory is scanned for .jsonl and .ndjson files. Files named after a\n" +
		"domain (bills.jsonl, waste-2026.jsonl) supply the domain for lines without one.\n" +
		"Limits are evaluated once after the import.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportDryRun, "dry-run", "n", false, "Validate only; write nothing")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	progress := func(current, total int) {
		if flagQuiet || total < 2 {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing files... %d/%d", current, total)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	loaded, err := pipeline.Load(args[0], progress)
	if err != nil {
		return err
	}
	if loaded.TotalFiles == 0 {
		info("  No .jsonl files under %s", args[0])
		return nil
	}

	return withRuntime(func(rt *runtime) error {
		res, err := rt.svc.Import(loaded.Records, flagImportDryRun)
		if err != nil {
			return err
		}

		verb := "Imported"
		if flagImportDryRun {
			verb = "Would import"
		}
		info("  %s %d entries from %d files", verb, res.Total(), loaded.ParsedFiles)
		for _, d := range model.Domains {
			if n := res.Added[d]; n > 0 {
				info("    %-8s %d", d, n)
			}
		}
		if loaded.FileErrors > 0 {
			info("  %s", cli.Warn(fmt.Sprintf("%d files could not be read", loaded.FileErrors)))
		}
		if loaded.ParseErrors > 0 {
			info("  %s", cli.Warn(fmt.Sprintf("%d lines were not valid JSON or had no domain", loaded.ParseErrors)))
		}

		if len(res.Rejected) > 0 {
			sort.SliceStable(res.Rejected, func(i, j int) bool {
				if res.Rejected[i].File != res.Rejected[j].File {
					return res.Rejected[i].File < res.Rejected[j].File
				}
				return res.Rejected[i].Line < res.Rejected[j].Line
			})
			const maxShown = 20
			fmt.Println(cli.Warn(fmt.Sprintf("  %d lines rejected:", len(res.Rejected))))
			for i, r := range res.Rejected {
				if i == maxShown {
					fmt.Println(cli.Muted(fmt.Sprintf("    ... and %d more", len(res.Rejected)-maxShown)))
					break
				}
				fmt.Println(cli.Muted("    " + r.String()))
			}
		}

		printAlerts(res.Alerts)
		return nil
	})
}
