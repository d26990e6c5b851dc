package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sywesk/tsme-exporter/pkg/meterfetcher"
	"github.com/sywesk/tsme-exporter/pkg/tsme"
)

type Format string

const (
	JSONFormat  Format = "json"
	CSVFormat   Format = "csv"
	TableFormat Format = "table"
)

var ErrUnknownFormat = fmt.Errorf("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSONFormat, CSVFormat, TableFormat:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (expected json, csv or table)", ErrUnknownFormat, s)
	}
}

type value struct {
	Date   string   `json:"date"`
	Index  *float64 `json:"index"`
	Volume float64  `json:"volume"`
}

type meterValues struct {
	MeterID string  `json:"meterId"`
	Values  []value `json:"values"`
}

func prepare(data meterfetcher.MeterData) meterValues {
	values := make([]value, 0, len(data.Records))
	for _, record := range data.Records {
		values = append(values, value{
			Date:   record.Date.In(tsme.Location()).Format(tsme.DateLayout),
			Index:  record.Index,
			Volume: record.Volume,
		})
	}
	return meterValues{MeterID: data.MeterID, Values: values}
}

// WriteMeter writes the series of a single meter. In JSON it is a single object.
func WriteMeter(w io.Writer, format Format, data meterfetcher.MeterData) error {
	if format == JSONFormat {
		return writeJSON(w, prepare(data))
	}
	return WriteMeters(w, format, []meterfetcher.MeterData{data})
}

// WriteMeters writes the series of several meters. In JSON it is an array of objects, the
// other formats have one row per record with the meter id as first column.
func WriteMeters(w io.Writer, format Format, data []meterfetcher.MeterData) error {
	prepared := make([]meterValues, 0, len(data))
	for _, meter := range data {
		prepared = append(prepared, prepare(meter))
	}

	switch format {
	case JSONFormat:
		return writeJSON(w, prepared)
	case CSVFormat:
		return writeCSV(w, prepared)
	case TableFormat:
		writeTable(w, prepared)
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json output: %w", err)
	}

	payload = append(payload, '\n')
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write json output: %w", err)
	}
	return nil
}

var header = []string{"meterId", "date", "index", "volume"}

func rows(prepared []meterValues) [][]string {
	var result [][]string
	for _, meter := range prepared {
		for _, v := range meter.Values {
			result = append(result, []string{meter.MeterID, v.Date, formatIndex(v.Index), formatFloat(v.Volume)})
		}
	}
	return result
}

func writeCSV(w io.Writer, prepared []meterValues) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(rows(prepared)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, prepared []meterValues) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	t.AppendHeader(table.Row{header[0], header[1], header[2], header[3]})
	for _, row := range rows(prepared) {
		t.AppendRow(table.Row{row[0], row[1], row[2], row[3]})
	}
	t.Render()
}

func formatIndex(index *float64) string {
	if index == nil {
		return ""
	}
	return formatFloat(*index)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
