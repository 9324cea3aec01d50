package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cstats/internal/storage"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived aggregation runs",
	Long: `List the runs stored in the archive database, newest first.

Examples:
  cstats runs
  cstats runs --limit 5`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to list (0 = all)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	archive, err := storage.OpenArchive(archiveDBPath(cfg.Archive.DBPath), newLogger(cfg))
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %6s  %13s  %10s\n", "RUN ID", "GENERATED", "YEAR", "CONVERSATIONS", "SIZE")
	for _, r := range runs {
		fmt.Printf("%-36s  %-20s  %6d  %13d  %10s\n",
			r.RunID, r.GeneratedAt, r.Year, r.Conversations, humanSize(r.CompressedSize))
	}
	return nil
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
