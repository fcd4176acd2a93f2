package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/flowcheck/errors"
	"github.com/kbukum/flowcheck/logger"
)

// Writer persists reports as JSON artifacts, one file per run keyed by
// flow id.
type Writer struct {
	dir string
	log *logger.Logger
}

// NewWriter creates a writer that stores artifacts under dir. A nil
// logger falls back to a no-op logger.
func NewWriter(dir string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{dir: dir, log: log.WithComponent("report.writer")}
}

// Write stores the report as <dir>/<flow_id>.json and returns the
// artifact path. The directory is created when missing.
func (w *Writer) Write(r *Report) (string, error) {
	if r == nil || r.FlowID == "" {
		return "", errors.InvalidInput("flow_id", "report needs a flow id")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir %s: %w", w.dir, err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report %s: %w", r.FlowID, err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, r.FlowID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	w.log.Info("report written", logger.Fields(
		"path", path,
		"status", r.OverallStatus,
		"nodes", len(r.Nodes),
	))
	return path, nil
}
