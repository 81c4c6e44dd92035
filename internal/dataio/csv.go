// Package dataio loads tabular datasets from delimited text files.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

// ReadOptions controls how CSV input is turned into an array.
type ReadOptions struct {
	// Header treats the first record as column names.
	Header bool

	// Structured builds a structured array whose fields take the header
	// names (or f0, f1, ... without a header) and per-column kinds. Plain
	// arrays require every column to share one kind family.
	Structured bool

	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// ReadFile reads a CSV file into an array.
func ReadFile(path string, opts ReadOptions) (*array.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fairerrors.NewIOError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses CSV data into an array. Each column is typed as int when all
// its cells parse as integers, float when they all parse as numbers and
// string otherwise.
func Read(r io.Reader, opts ReadOptions) (*array.Array, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fairerrors.NewIOError("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, fairerrors.NewShapeError(fairerrors.CodeNotTwoDimensional, "CSV input holds no records")
	}

	var header []string
	if opts.Header {
		header, records = records[0], records[1:]
	} else {
		header = make([]string, len(records[0]))
		for i := range header {
			header[i] = fmt.Sprintf("f%d", i)
		}
	}

	kinds := inferKinds(len(header), records)
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = parseCell(strings.TrimSpace(cell), kinds[j])
		}
		rows[i] = row
	}

	if opts.Structured {
		fields := make([]array.Field, len(header))
		for j, name := range header {
			fields[j] = array.Field{Name: strings.TrimSpace(name), Kind: kinds[j]}
		}
		a, err := array.NewStructured(fields, rows)
		if err != nil {
			return nil, fairerrors.NewIOError("invalid CSV header", err)
		}
		return a, nil
	}

	hasText, hasNumber := false, false
	for _, k := range kinds {
		hasText = hasText || k.IsTextual()
		hasNumber = hasNumber || k.IsNumerical()
	}
	if hasText && hasNumber {
		return nil, fairerrors.NewTypeError(fairerrors.CodeNotBaseType,
			"CSV columns mix text and numbers; load it as a structured array")
	}
	if len(rows) == 0 {
		return array.New([]int{0, len(header)}, nil)
	}
	return array.Matrix(rows)
}

func inferKinds(width int, records [][]string) []array.Kind {
	kinds := make([]array.Kind, width)
	for j := range kinds {
		kinds[j] = array.KindInt
		for _, rec := range records {
			cell := strings.TrimSpace(rec[j])
			if kinds[j] == array.KindInt {
				if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
					continue
				}
				kinds[j] = array.KindFloat
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				kinds[j] = array.KindString
				break
			}
		}
	}
	return kinds
}

func parseCell(cell string, kind array.Kind) any {
	switch kind {
	case array.KindInt:
		n, _ := strconv.ParseInt(cell, 10, 64)
		return n
	case array.KindFloat:
		f, _ := strconv.ParseFloat(cell, 64)
		return f
	default:
		return cell
	}
}
