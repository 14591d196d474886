package source

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/golang/snappy"
)

// Format is the encoding of a snapshot file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "jsonl"
)

// snappySuffix marks snapshot files compressed with the snappy framing format.
const snappySuffix = ".sz"

// DetectFormat derives the format and compression of a snapshot from its
// file name, e.g. "flows.csv", "flows.jsonl.sz".
func DetectFormat(name string) (Format, bool, error) {
	name = strings.ToLower(name)
	compressed := strings.HasSuffix(name, snappySuffix)
	name = strings.TrimSuffix(name, snappySuffix)

	switch path.Ext(name) {
	case ".csv":
		return FormatCSV, compressed, nil
	case ".jsonl", ".ndjson", ".json":
		return FormatJSON, compressed, nil
	}
	return "", compressed, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Decode reads a snapshot in the given format. When compressed is set the
// stream is snappy-framed.
func Decode(r io.Reader, format Format, compressed bool) ([]TradeRecord, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	switch format {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSON:
		return decodeJSONLines(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Encode writes records as a snapshot in the given format.
func Encode(w io.Writer, format Format, compressed bool, records []TradeRecord) error {
	if compressed {
		sw := snappy.NewBufferedWriter(w)
		if err := Encode(sw, format, false, records); err != nil {
			return err
		}
		return sw.Close()
	}

	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range records {
			row := []string{
				r.Reporter,
				r.Partner,
				r.Flow,
				strconv.FormatFloat(r.Value, 'g', -1, 64),
				strconv.Itoa(r.Year),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

var csvHeader = []string{"reporter", "partner", "flow", "value", "year"}

// decodeCSV reads a CSV snapshot with a header row. Columns are located by
// name; flow defaults to Export and year to zero when absent.
func decodeCSV(r io.Reader) ([]TradeRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"reporter", "partner", "value"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []TradeRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		value, err := strconv.ParseFloat(field(row, "value"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value: %v", ErrInvalidRecord, line, err)
		}
		rec := TradeRecord{
			Reporter: field(row, "reporter"),
			Partner:  field(row, "partner"),
			Flow:     field(row, "flow"),
			Value:    value,
		}
		if rec.Flow == "" {
			rec.Flow = FlowExport
		}
		if y := field(row, "year"); y != "" {
			if rec.Year, err = strconv.Atoi(y); err != nil {
				return nil, fmt.Errorf("%w: line %d: year: %v", ErrInvalidRecord, line, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeJSONLines(r io.Reader) ([]TradeRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []TradeRecord
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec TradeRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, line, err)
		}
		if rec.Flow == "" {
			rec.Flow = FlowExport
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadFile reads a snapshot from a local file, detecting the format from
// its name.
func LoadFile(filename string) ([]TradeRecord, error) {
	format, compressed, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	records, err := Decode(bufio.NewReader(f), format, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return records, nil
}

// NewFileSource loads a snapshot file into a memory-backed source.
func NewFileSource(filename string) (*MemorySource, error) {
	records, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	src := NewMemorySource(records)
	src.name = "file"
	return src, nil
}
