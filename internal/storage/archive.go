// Package storage persists generated snapshots in a local SQLite archive,
// one row per run, so earlier generations stay inspectable and comparable.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"cstats/internal/errors"
	"cstats/internal/logging"
)

// Archive is the run archive backed by a SQLite database in WAL mode.
// Snapshot documents are stored zstd-compressed.
type Archive struct {
	conn    *sql.DB
	logger  *logging.Logger
	dbPath  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Run describes one archived generation.
type Run struct {
	RunID          string `json:"run_id"`
	GeneratedAt    string `json:"generated_at"`
	Year           int    `json:"year"`
	Conversations  int    `json:"conversations"`
	RawSize        int    `json:"raw_size"`
	CompressedSize int    `json:"compressed_size"`
	CreatedAt      string `json:"created_at"`
}

// OpenArchive opens or creates the archive database at dbPath.
func OpenArchive(dbPath string, logger *logging.Logger) (*Archive, error) {
	if logger == nil {
		logger = logging.NewDiscard()
	}

	if dir := filepath.Dir(dbPath); dir != "." && dir != ":memory:" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.New(errors.ArchiveUnavailable, "failed to create archive directory", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.ArchiveUnavailable, "failed to open archive database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.ArchiveUnavailable, "failed to set pragma", err)
		}
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.ArchiveUnavailable, "failed to create compressor", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.ArchiveUnavailable, "failed to create decompressor", err)
	}

	a := &Archive{
		conn:    conn,
		logger:  logger,
		dbPath:  dbPath,
		encoder: encoder,
		decoder: decoder,
	}
	if err := a.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.ArchiveUnavailable, "failed to initialize archive schema", err)
	}
	return a, nil
}

func (a *Archive) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			year INTEGER NOT NULL,
			conversations INTEGER NOT NULL,
			raw_size INTEGER NOT NULL,
			compressed_size INTEGER NOT NULL,
			snapshot BLOB NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	if _, err := a.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema statement: %w", err)
	}
	return nil
}

// InsertRun archives one encoded snapshot document and returns its run id.
func (a *Archive) InsertRun(snapshotJSON []byte, generatedAt string, year, conversations int) (string, error) {
	runID := uuid.NewString()
	compressed := a.encoder.EncodeAll(snapshotJSON, nil)

	_, err := a.conn.Exec(`
		INSERT INTO runs (run_id, generated_at, year, conversations, raw_size, compressed_size, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, generatedAt, year, conversations,
		len(snapshotJSON), len(compressed), compressed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	a.logger.Debug("run archived", map[string]interface{}{
		"run_id":          runID,
		"raw_size":        len(snapshotJSON),
		"compressed_size": len(compressed),
	})
	return runID, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 lists all.
func (a *Archive) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, generated_at, year, conversations, raw_size, compressed_size, created_at
		FROM runs ORDER BY created_at DESC, run_id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.GeneratedAt, &r.Year, &r.Conversations,
			&r.RawSize, &r.CompressedSize, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the decompressed snapshot document of one archived run.
func (a *Archive) GetRun(runID string) ([]byte, *Run, error) {
	var r Run
	var compressed []byte
	err := a.conn.QueryRow(`
		SELECT run_id, generated_at, year, conversations, raw_size, compressed_size, snapshot, created_at
		FROM runs WHERE run_id = ?`, runID).
		Scan(&r.RunID, &r.GeneratedAt, &r.Year, &r.Conversations,
			&r.RawSize, &r.CompressedSize, &compressed, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}

	snapshot, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return snapshot, &r, nil
}

// Close releases the database handle and the compression codecs.
func (a *Archive) Close() error {
	a.encoder.Close()
	a.decoder.Close()
	return a.conn.Close()
}
