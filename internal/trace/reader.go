package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// ReadOptions selects the columns that make up a trace.
type ReadOptions struct {
	TimeColumn string
	Channels   []string
	Delimiter  rune
}

// DefaultReadOptions matches the powmon output layout: tab separated, a
// millisecond time column and one power column per CPU cluster.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		TimeColumn: "Time_Milliseconds",
		Channels:   []string{"Power_A7", "Power_A15"},
		Delimiter:  '\t',
	}
}

// ReadFile reads a delimited trace file.
func ReadFile(path string, opts ReadOptions) (*PowerTrace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer file.Close()

	tr, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Read parses a delimited trace with a header row. Rows with fewer fields
// than the selected columns need are skipped, which tolerates a truncated
// final line from an interrupted logger.
func Read(r io.Reader, opts ReadOptions) (*PowerTrace, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	timeIdx, ok := index[opts.TimeColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, opts.TimeColumn)
	}

	chanIdx := make([]int, len(opts.Channels))
	maxIdx := timeIdx
	for i, name := range opts.Channels {
		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		chanIdx[i] = idx
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	tr := &PowerTrace{Channels: make([]Channel, len(opts.Channels))}
	for i, name := range opts.Channels {
		tr.Channels[i].Name = name
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= maxIdx {
			continue
		}

		ts, err := parseField(record[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, opts.TimeColumn, err)
		}
		tr.Times = append(tr.Times, ts)

		for i, idx := range chanIdx {
			w, err := parseField(record[idx])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, opts.Channels[i], err)
			}
			tr.Channels[i].Watts = append(tr.Channels[i].Watts, w)
		}
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
