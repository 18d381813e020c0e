// Package archive writes compressed snapshots of the alert history so the
// in-memory, process-lifetime history survives restarts in audit form.
// Snapshots are zstd-compressed JSON Lines, one alert record per line.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"sipwatch/internal/types"
)

const snapshotExt = ".jsonl.zst"

// Writer persists alert-history snapshots under a base directory, one file
// per snapshot, named by the snapshot time.
type Writer struct {
	dir    string
	clock  types.Clock
	logger types.Logger
}

// NewWriter builds a Writer, creating the base directory if needed.
func NewWriter(dir string, clock types.Clock, logger types.Logger) (*Writer, error) {
	if dir == "" {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: directory is required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to create directory", err)
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Writer{dir: dir, clock: clock, logger: logger}, nil
}

// Snapshot writes the records to a new timestamped snapshot file and
// returns its path. An empty history still produces a (valid, empty)
// snapshot so "flushed at shutdown" is observable.
func (w *Writer) Snapshot(records []types.AlertRecord) (string, error) {
	name := fmt.Sprintf("alerts-%s%s", w.clock.Now().UTC().Format("20060102T150405Z"), snapshotExt)
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to create snapshot file", err)
	}

	if err := writeCompressed(f, records); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to close snapshot file", err)
	}

	w.logger.Info("alert history snapshot written", "path", path, "records", len(records))
	return path, nil
}

func writeCompressed(dst io.Writer, records []types.AlertRecord) error {
	enc, err := zstd.NewWriter(dst)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to init compressor", err)
	}

	for i := range records {
		line, err := json.Marshal(&records[i])
		if err != nil {
			enc.Close()
			return types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to encode alert record", err)
		}
		if _, err := enc.Write(append(line, '\n')); err != nil {
			enc.Close()
			return types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to write snapshot", err)
		}
	}
	if err := enc.Close(); err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to flush snapshot", err)
	}
	return nil
}

// ReadSnapshot decompresses and decodes one snapshot file.
func ReadSnapshot(path string) ([]types.AlertRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to open snapshot", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to init decompressor", err)
	}
	defer dec.Close()

	var out []types.AlertRecord
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec types.AlertRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: corrupt snapshot line", err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to read snapshot", err)
	}
	return out, nil
}

// List returns snapshot paths under the writer's directory, oldest first.
func (w *Writer) List() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "archive: failed to list snapshots", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) != ".zst" {
			continue
		}
		out = append(out, filepath.Join(w.dir, e.Name()))
	}
	return out, nil
}

// Prune removes snapshots older than the retention window, returning how
// many were deleted. Files whose names do not parse are left alone.
func (w *Writer) Prune(retention time.Duration) (int, error) {
	paths, err := w.List()
	if err != nil {
		return 0, err
	}
	cutoff := w.clock.Now().UTC().Add(-retention)

	removed := 0
	for _, p := range paths {
		ts, ok := snapshotTime(filepath.Base(p))
		if !ok || !ts.Before(cutoff) {
			continue
		}
		if err := os.Remove(p); err != nil {
			w.logger.Warn("failed to prune snapshot", "path", p, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func snapshotTime(name string) (time.Time, bool) {
	const prefix = "alerts-"
	if len(name) < len(prefix)+len("20060102T150405Z")+len(snapshotExt) {
		return time.Time{}, false
	}
	raw := name[len(prefix) : len(name)-len(snapshotExt)]
	ts, err := time.Parse("20060102T150405Z", raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
