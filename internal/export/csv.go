// Package export writes a finished dataset to disk.
//
// Fields are quoted only when they contain a comma, a double quote or a line
// break, the minimal quoting pandas uses. A missing RF value is therefore
// written as a bare " " cell rather than the quoted form encoding/csv would
// produce for a field with leading space.
package export

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/pdwgen/internal/dataset"
	"github.com/banshee-data/pdwgen/internal/fsutil"
	"github.com/banshee-data/pdwgen/internal/pdw"
)

// DefaultFilename is the output name used when none is configured.
const DefaultFilename = "pdw_dataset.csv"

// WriteCSV writes a header and one row per record to path. The data goes to
// path+".tmp" first and is renamed into place only after a clean flush, so a
// failed run never leaves a truncated dataset behind.
func WriteCSV(fsys fsutil.FileSystem, path string, records []pdw.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("csv mkdir %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	f, err := fsys.Create(tmp)
	if err != nil {
		return fmt.Errorf("csv create %s: %w", tmp, err)
	}

	bw := bufio.NewWriter(f)
	if err := writeRows(bw, dataset.Table(records)); err != nil {
		f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("csv write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("csv flush: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("csv close: %w", err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		return fmt.Errorf("csv rename %s: %w", path, err)
	}
	return nil
}

func writeRows(w io.StringWriter, rows [][]string) error {
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				if _, err := w.WriteString(","); err != nil {
					return err
				}
			}
			if _, err := w.WriteString(quoteField(field)); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return nil
}

func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
