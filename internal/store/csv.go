package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"layoffs-engine/internal/domain"
	"layoffs-engine/internal/errs"
)

const utf8BOM = "\ufeff"

// LoadTable reads the persisted notice table. The first record is the
// header; shorter rows are padded with "" and wider rows are rejected.
func LoadTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, &errs.StorageError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return domain.Table{}, &errs.StorageError{Op: "load", Path: path, Err: err}
	}
	return t, nil
}

// ReadTable decodes a CSV notice table from r.
func ReadTable(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, errors.New("empty file: no header row")
	}
	if err != nil {
		return domain.Table{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := domain.Table{Columns: header}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, err
		}
		if len(rec) > len(header) {
			return domain.Table{}, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		row := make(domain.Record, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteTable encodes t as CSV with a header row.
func WriteTable(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := writeRecord(w, cw, t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeRecord(w, cw, row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes rec through cw. A record holding one empty field would
// come out as a blank line, which csv.Reader skips, so it is written as "".
func writeRecord(w io.Writer, cw *csv.Writer, rec []string) error {
	if len(rec) != 1 || rec[0] != "" {
		return cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// SaveTable replaces path with t. The table is written to a temp file in
// the same directory and renamed over the target, so readers see either the
// old or the new file. With backup set the previous file is kept as .bak.
func SaveTable(path string, t domain.Table, backup bool) error {
	if err := saveTable(path, t, backup); err != nil {
		return &errs.StorageError{Op: "save", Path: path, Err: err}
	}
	return nil
}

func saveTable(path string, t domain.Table, backup bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := WriteTable(tmp, t); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if backup {
		if err := copyFile(path, path+".bak"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup: %w", err)
		}
	}
	return os.Rename(tmpName, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Exists reports whether a table file is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &errs.StorageError{Op: "stat", Path: path, Err: err}
}
