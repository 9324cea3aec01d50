package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"cstats/internal/errors"
	"cstats/internal/logging"
)

// Loader reads every per-conversation record under a corpus directory.
// Layout is one subdirectory per month containing one JSON file per
// conversation; .json.zst files are decompressed transparently.
type Loader struct {
	dir    string
	logger *logging.Logger
}

// NewLoader creates a loader for the given corpus directory.
func NewLoader(dir string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Loader{dir: dir, logger: logger}
}

// Result is the outcome of one corpus load.
type Result struct {
	Conversations []Conversation
	Skipped       int // malformed records skipped, never fatal
}

// Load reads all records, normalizes them, and returns them ordered by
// creation time. An unreadable corpus root is fatal; a malformed record is
// skipped and counted.
func (l *Loader) Load() (*Result, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.New(errors.CorpusUnreadable, "cannot read corpus directory", err).
			WithDetails(map[string]interface{}{"dir": l.dir})
	}

	result := &Result{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		monthDir := filepath.Join(l.dir, entry.Name())
		files, err := os.ReadDir(monthDir)
		if err != nil {
			// A vanished month directory degrades to skipped records.
			l.logger.Warn("skipping unreadable month directory", map[string]interface{}{
				"dir":   monthDir,
				"error": err.Error(),
			})
			continue
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			name := file.Name()
			if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".json.zst") {
				continue
			}

			path := filepath.Join(monthDir, name)
			conv, err := l.loadFile(path)
			if err != nil {
				result.Skipped++
				l.logger.Warn("skipping malformed record", map[string]interface{}{
					"file":  path,
					"code":  string(errors.RecordParse),
					"error": err.Error(),
				})
				continue
			}

			result.Conversations = append(result.Conversations, *conv)
		}
	}

	sort.SliceStable(result.Conversations, func(i, j int) bool {
		a, b := &result.Conversations[i], &result.Conversations[j]
		if a.Timestamps.CreatedUnix != b.Timestamps.CreatedUnix {
			return a.Timestamps.CreatedUnix < b.Timestamps.CreatedUnix
		}
		return a.ID < b.ID
	})

	fields := map[string]interface{}{
		"records": len(result.Conversations),
		"skipped": result.Skipped,
	}
	if n := len(result.Conversations); n > 0 {
		fields["first"] = result.Conversations[0].Derived.Date
		fields["last"] = result.Conversations[n-1].Derived.Date
	}
	l.logger.Info("loaded corpus", fields)

	return result, nil
}

func (l *Loader) loadFile(path string) (*Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		reader = dec
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	if conv.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}

	conv.normalize()
	return &conv, nil
}
