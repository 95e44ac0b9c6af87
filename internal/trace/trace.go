// Package trace renders saved transfer-function traces offline.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/stabctl/internal/servo"
)

const (
	DefaultFile    = "data.csv"
	DefaultFreqMin = 10.0
	DefaultFreqMax = 20000.0
)

// Trace is one column of power readings in file order.
type Trace struct {
	Path   string
	Values []float64
}

func (t Trace) Len() int { return len(t.Values) }

// Load reads the first field of every row of a headerless delimited file.
func Load(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, fmt.Errorf("trace: open: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse is Load on an open reader; path is only used in errors.
func Parse(r io.Reader, path string) (Trace, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	tr := Trace{Path: path}
	prev := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return Trace{}, &servo.ParseError{Path: path, Line: perr.Line, Err: perr.Err}
			}
			return Trace{}, fmt.Errorf("trace: read %s: %w", path, err)
		}
		line, _ := cr.FieldPos(0)
		// csv skips blank lines; an interior one would shift every later
		// row onto the wrong frequency bin.
		if line > prev+1 {
			return Trace{}, &servo.ParseError{Path: path, Line: prev + 1, Err: errors.New("empty row")}
		}
		prev = line
		field := strings.TrimSpace(rec[0])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Trace{}, &servo.ParseError{Path: path, Line: line, Text: field, Err: errors.New("not a number")}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Trace{}, &servo.ParseError{Path: path, Line: line, Text: field, Err: errors.New("not finite")}
		}
		tr.Values = append(tr.Values, v)
	}
	if len(tr.Values) == 0 {
		return Trace{}, &servo.ParseError{Path: path, Err: errors.New("no rows")}
	}
	return tr, nil
}

// FrequencyAxis returns n evenly spaced frequencies from lo to hi inclusive.
func FrequencyAxis(lo, hi float64, n int) []float64 {
	return servo.Linspace(lo, hi, n)
}
