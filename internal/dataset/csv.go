package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load picks a reader from the file extension.
func Load(path string, opt Options) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// Read is Load for an already opened stream; name supplies the extension.
func Read(src io.Reader, name string, opt Options) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		b, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("read xlsx: %w", err)
		}
		return ReadXLSX(b, name, opt)
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	return ReadCSV(src, name, opt)
}

// LoadCSV reads a delimited file from disk.
func LoadCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads a delimited stream whose first record is the header.
func ReadCSV(src io.Reader, name string, opt Options) (*Dataset, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %s is empty", name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	maxRows := opt.MaxRows
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if maxRows > 0 && len(rows) >= maxRows {
			continue
		}
		if isBlankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return New(name, header, rows, opt)
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
