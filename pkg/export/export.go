// Package export writes allocation results as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/wasteflow/core/aggregate"
	"github.com/kilianp07/wasteflow/core/model"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// RecordsHeader is the CSV header of WriteRecordsCSV.
var RecordsHeader = []string{
	"waste_type", "producer_id", "processor_id",
	"allocated_volume_kg", "distance_km", "unit_cost_eur", "total_cost_eur",
}

// Report bundles everything a run produces.
type Report struct {
	RunID    string                   `json:"run_id"`
	Strategy string                   `json:"strategy"`
	Records  []model.AllocationRecord `json:"allocations"`
	Unmet    []model.UnmetDemand      `json:"unmet_demand"`
	Summary  aggregate.Summary        `json:"summary"`
}

// WriteRecordsCSV writes one row per record. Distances and costs are
// written with two decimals.
func WriteRecordsCSV(w io.Writer, records []model.AllocationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordsHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			string(r.Category),
			r.ProducerID,
			r.ProcessorID,
			strconv.FormatFloat(r.VolumeKg, 'f', -1, 64),
			strconv.FormatFloat(r.DistanceKm, 'f', 2, 64),
			strconv.FormatFloat(r.UnitCost, 'f', 2, 64),
			strconv.FormatFloat(r.TotalCost, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsJSON writes records as a JSON array.
func WriteRecordsJSON(w io.Writer, records []model.AllocationRecord) error {
	if records == nil {
		records = []model.AllocationRecord{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteSummaryJSON writes an indented summary.
func WriteSummaryJSON(w io.Writer, s aggregate.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteReport writes rep in the requested format. CSV carries only the
// allocation records.
func WriteReport(w io.Writer, f Format, rep Report) error {
	switch f {
	case FormatCSV:
		return WriteRecordsCSV(w, rep.Records)
	case FormatJSON, "":
		if rep.Records == nil {
			rep.Records = []model.AllocationRecord{}
		}
		if rep.Unmet == nil {
			rep.Unmet = []model.UnmetDemand{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
