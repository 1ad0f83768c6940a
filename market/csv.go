package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads a daily rate file. See ReadCSV for the expected layout.
func LoadCSV(path, layout string) (*PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := ReadCSV(f, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// ReadCSV parses a header row followed by one row per date:
//
//	DATE,EUR,USD,JPY
//	02/01/2015,1.2775,1.5336,183.74
//
// The first column is the date in layout (DateLayout if empty); every other
// column is a currency, kept in column order. Blank lines are skipped.
func ReadCSV(r io.Reader, layout string) (*PriceSeries, error) {
	if layout == "" {
		layout = DateLayout
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty price file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs a date column and at least one currency, got %v", header)
	}

	currencies := make([]string, len(header)-1)
	for i, h := range header[1:] {
		currencies[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	var (
		dates []time.Time
		rows  [][]float64
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		d, err := ParseDate(layout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, len(currencies))
		for c := range currencies {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d %s: %w", line, currencies[c], err)
			}
			row[c] = v
		}
		dates = append(dates, d)
		rows = append(rows, row)
	}

	return NewPriceSeries(dates, currencies, rows)
}

// WriteCSV writes ps in the layout ReadCSV reads.
func WriteCSV(w io.Writer, ps *PriceSeries, layout string) error {
	if layout == "" {
		layout = DateLayout
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"DATE"}, ps.Currencies()...)); err != nil {
		return err
	}
	rec := make([]string, len(ps.Currencies())+1)
	for row, d := range ps.Dates() {
		rec[0] = d.Format(layout)
		for c := range ps.Currencies() {
			rec[c+1] = strconv.FormatFloat(ps.Spot(row, c), 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes ps to path.
func SaveCSV(path string, ps *PriceSeries, layout string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ps, layout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
