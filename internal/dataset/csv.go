package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

// Column names of the dataset source.
const (
	colTimestamp       = "timestamp"
	colIrradiance      = "irradiance_wm2"
	colPanelTemp       = "panel_temp_c"
	colPower           = "power_production_kw"
	colAnomalyType     = "anomaly_type"
	colAnomalySeverity = "anomaly_severity"
)

func inverterColumn(i int) string {
	return fmt.Sprintf("inverter_%d_status", i+1)
}

// ParseCSV reads a header-led CSV document into a Dataset. Only column
// access is guaranteed: cell contents are kept verbatim, missing columns
// and short records yield empty strings. Records the CSV reader cannot
// tokenize are skipped and counted.
func ParseCSV(r io.Reader) (solar.Dataset, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var (
		ds      solar.Dataset
		skipped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read record: %w", err)
		}

		row := solar.DatasetRow{
			Timestamp:       cell(rec, colTimestamp),
			IrradianceWm2:   cell(rec, colIrradiance),
			PanelTempC:      cell(rec, colPanelTemp),
			PowerKW:         cell(rec, colPower),
			AnomalyType:     strings.TrimSpace(cell(rec, colAnomalyType)),
			AnomalySeverity: strings.TrimSpace(cell(rec, colAnomalySeverity)),
		}
		for i := range row.InverterStatus {
			row.InverterStatus[i] = cell(rec, inverterColumn(i))
		}
		ds = append(ds, row)
	}

	return ds, skipped, nil
}

// FileName returns the dataset file name of a site.
func FileName(siteID string) string {
	return siteID + "_data.csv"
}
