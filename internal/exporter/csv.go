package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"VixPull/internal/model"

	"github.com/sirupsen/logrus"
)

// WriteDataset writes every record as one CSV row. Rows keep their own width.
// The file is written next to path and renamed into place once complete.
func WriteDataset(path string, data model.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vixpull-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	w.UseCRLF = true
	row := make([]string, 0, 16)
	for _, rec := range data {
		row = row[:0]
		for _, v := range rec {
			s, err := FormatField(v)
			if err != nil {
				tmp.Close()
				return fmt.Errorf("format %s: %w", rec.Date(), err)
			}
			row = append(row, s)
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %s: %w", rec.Date(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"records": len(data),
	}).Info("csv written")
	return nil
}

// FormatField renders one decoded JSON value as a CSV cell.
func FormatField(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
