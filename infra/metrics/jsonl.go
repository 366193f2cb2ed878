package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
)

// JSONLConfig configures the run journal. Sizes are in megabytes, ages in
// days.
type JSONLConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// JSONLSink appends every run as one JSON line to a rotating file.
type JSONLSink struct {
	out *lumberjack.Logger
}

// NewJSONLSink creates the journal directory and returns the sink.
func NewJSONLSink(cfg JSONLConfig) (*JSONLSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("jsonl sink: path is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 50
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &JSONLSink{out: &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}}, nil
}

// RecordRun writes ev in a single write so concurrent runs never interleave.
func (s *JSONLSink) RecordRun(ev coremetrics.RunEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = s.out.Write(append(b, '\n'))
	return err
}

// Close closes the current journal file.
func (s *JSONLSink) Close() error { return s.out.Close() }
