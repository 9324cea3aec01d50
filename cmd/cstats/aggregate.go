package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cstats/internal/corpus"
	"cstats/internal/output"
	"cstats/internal/record"
	"cstats/internal/scores"
	"cstats/internal/snapshot"
	"cstats/internal/storage"
)

var (
	aggregateCorpus    string
	aggregateOutput    string
	aggregateFormat    string
	aggregateNoArchive bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate the corpus into a snapshot document",
	Long: `Load every conversation record from the corpus directory, compute all
statistics blocks, and write the aggregate snapshot.

Examples:
  cstats aggregate
  cstats aggregate --corpus data/wmeta --output data/stats/stats.json
  cstats aggregate --format json --no-archive`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateCorpus, "corpus", "", "Corpus directory (default: from config)")
	aggregateCmd.Flags().StringVar(&aggregateOutput, "output", "", "Output file, '-' for stdout (default: from config)")
	aggregateCmd.Flags().StringVar(&aggregateFormat, "format", "json", "Output format: json (indented) or compact")
	aggregateCmd.Flags().BoolVar(&aggregateNoArchive, "no-archive", false, "Skip archiving this run")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if aggregateCorpus != "" {
		cfg.CorpusDir = aggregateCorpus
	}
	if aggregateOutput != "" {
		cfg.Output = aggregateOutput
	}
	if aggregateFormat != "json" && aggregateFormat != "compact" {
		return fmt.Errorf("unknown format %q, want json or compact", aggregateFormat)
	}

	logger := newLogger(cfg)

	manifest, err := corpus.Load(cfg.CorpusDir)
	if err != nil {
		return err
	}
	if manifest != nil {
		logger.Info("corpus manifest", map[string]interface{}{
			"name": manifest.Name,
			"year": manifest.Year,
		})
	}

	defs, err := scores.Load(cfg.Scores.DefinitionsPath)
	if err != nil {
		return err
	}

	result, err := record.NewLoader(cfg.CorpusDir, logger).Load()
	if err != nil {
		return err
	}

	snap, err := snapshot.NewAssembler(cfg, defs, logger).WithManifest(manifest).Assemble(result.Conversations)
	if err != nil {
		return err
	}

	var encoded []byte
	if aggregateFormat == "compact" {
		encoded, err = output.DeterministicEncode(snap)
	} else {
		encoded, err = output.DeterministicEncodeIndented(snap, "  ")
	}
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	if cfg.Output == "-" {
		if _, err := os.Stdout.Write(encoded); err != nil {
			return err
		}
	} else {
		if dir := filepath.Dir(cfg.Output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(cfg.Output, encoded, 0644); err != nil {
			return err
		}
		logger.Info("snapshot written", map[string]interface{}{
			"path":    cfg.Output,
			"bytes":   len(encoded),
			"records": len(result.Conversations),
			"skipped": result.Skipped,
		})
	}

	if cfg.Archive.Enabled && !aggregateNoArchive {
		archive, err := storage.OpenArchive(archiveDBPath(cfg.Archive.DBPath), logger)
		if err != nil {
			return err
		}
		defer archive.Close()

		runID, err := archive.InsertRun(encoded, snap.GeneratedAt, snap.Year, len(result.Conversations))
		if err != nil {
			return err
		}
		logger.Info("run archived", map[string]interface{}{"run_id": runID})
	}

	return nil
}

func archiveDBPath(configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(".cstats", "cstats.db")
}
