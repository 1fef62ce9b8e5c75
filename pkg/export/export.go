package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/logisim/core/delivery/logging"
)

// WriteJSON writes the delivery records to w in JSON format.
func WriteJSON(w io.Writer, records []logging.Record) error {
	if records == nil {
		records = []logging.Record{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

var csvHeader = []string{
	"timestamp", "sim_hour", "task_id", "destination", "vehicle_id",
	"vehicle_kind", "outcome", "products", "weight_kg", "duration_hours", "reason",
}

// WriteCSV writes the delivery records to w in CSV format, one row per record.
func WriteCSV(w io.Writer, records []logging.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(r.SimHour),
			r.TaskID,
			r.Destination,
			r.VehicleID,
			r.VehicleKind,
			string(r.Outcome),
			strconv.Itoa(r.Products),
			formatFloat(r.WeightKG),
			formatFloat(r.DurationHours),
			r.Reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
