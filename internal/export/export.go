// Package export serializes normalized comment batches to JSON and
// CSV files on disk.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/metrics"
	"github.com/bitbash-dev/tiktok-comments/internal/scraper"
)

// Format selects the export output.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatBoth Format = "both"
)

// preferredColumns fixes the leading CSV column order; any further
// keys found on the records are appended in sorted order.
var preferredColumns = []string{
	"aweme_id",
	"cid",
	"author_pin",
	"comment_language",
	"create_time",
	"digg_count",
	"reply_comment_total",
	"region",
	"text",
	"text_extra",
	"user",
	"share_info",
}

// Sink writes comment batches to the output directory. File write
// failures are logged, never returned: an export failure must not
// abort sibling exports or sibling jobs.
type Sink struct {
	logger *zap.Logger
}

// NewSink constructs a Sink.
func NewSink(logger *zap.Logger) *Sink {
	return &Sink{logger: logger}
}

// ParseFormat maps a raw format string to a Format, falling back to
// JSON with a warning on anything unrecognized.
func (s *Sink) ParseFormat(raw string) Format {
	switch f := Format(strings.ToLower(raw)); f {
	case FormatJSON, FormatCSV, FormatBoth:
		return f
	}
	s.logger.Warn("unknown export format, falling back to json", zap.String("format", raw))
	return FormatJSON
}

// Export writes records under dir as baseName.json and/or
// baseName.csv, creating dir if needed. With FormatBoth the two writes
// are independent; a failure in one does not prevent the other.
func (s *Sink) Export(records []scraper.Comment, dir, baseName string, format Format) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.logger.Error("create output dir failed", zap.String("dir", dir), zap.Error(err))
		metrics.ObserveExport(string(format), "error")
		return
	}

	if format == FormatJSON || format == FormatBoth {
		path := filepath.Join(dir, baseName+".json")
		if err := s.writeJSON(records, path); err != nil {
			s.logger.Error("json export failed", zap.String("path", path), zap.Error(err))
			metrics.ObserveExport("json", "error")
		} else {
			s.logger.Info("exported comments",
				zap.Int("count", len(records)), zap.String("path", path))
			metrics.ObserveExport("json", "ok")
		}
	}

	if format == FormatCSV || format == FormatBoth {
		path := filepath.Join(dir, baseName+".csv")
		if err := s.writeCSV(records, path); err != nil {
			s.logger.Error("csv export failed", zap.String("path", path), zap.Error(err))
			metrics.ObserveExport("csv", "error")
		} else {
			s.logger.Info("exported comments",
				zap.Int("count", len(records)), zap.String("path", path))
			metrics.ObserveExport("csv", "ok")
		}
	}
}

// writeJSON renders the batch as one pretty-printed array. HTML
// escaping is off so non-ASCII and markup characters stay literal.
func (s *Sink) writeJSON(records []scraper.Comment, path string) error {
	if records == nil {
		records = []scraper.Comment{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// writeCSV flattens each record into one row; nested object and array
// values are serialized to their JSON text inside the cell, nil
// scalars render as empty strings. Zero records still produce a
// header-only file.
func (s *Sink) writeCSV(records []scraper.Comment, path string) error {
	rows, err := recordMaps(records)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		s.logger.Warn("no comments to export, writing header-only csv", zap.String("path", path))
	}
	headers := columnOrder(rows)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, key := range headers {
			cell, err := cellValue(row[key])
			if err != nil {
				return err
			}
			line[i] = cell
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}

// recordMaps converts records into generic maps keyed by their wire
// field names, so column resolution works on actual output keys.
func recordMaps(records []scraper.Comment) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal comment: %w", err)
		}
		var row map[string]any
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("flatten comment: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnOrder(rows []map[string]any) []string {
	if len(rows) == 0 {
		return append([]string(nil), preferredColumns...)
	}
	present := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			present[k] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(present))
	for _, k := range preferredColumns {
		if _, ok := present[k]; ok {
			ordered = append(ordered, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func cellValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case map[string]any, []any:
		text, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("marshal csv cell: %w", err)
		}
		return string(text), nil
	default:
		return fmt.Sprint(val), nil
	}
}
