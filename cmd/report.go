package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/logisim/core/delivery/logging"
	"github.com/kilianp07/logisim/pkg/export"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise the persisted delivery log per destination",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("destination", "", "only this destination")
	reportCmd.Flags().String("vehicle", "", "only this vehicle id")
	reportCmd.Flags().String("format", "table", "output format: table, json or csv")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DeliveryLog.Backend == "memory" {
		return fmt.Errorf("delivery_log backend is memory; nothing is persisted")
	}
	store, err := logging.NewStore(cfg.DeliveryLog)
	if err != nil {
		return err
	}
	defer store.Close()

	q := logging.Query{}
	q.Destination, _ = cmd.Flags().GetString("destination")
	q.VehicleID, _ = cmd.Flags().GetString("vehicle")
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), recs)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DESTINATION\tDELIVERED\tCANCELLED\tFAILED\tPRODUCTS\tWEIGHT KG")
	for _, s := range logging.Reduce(recs) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\n", s.Destination, s.Delivered, s.Cancelled, s.Failed, s.Products, s.WeightKG)
	}
	return tw.Flush()
}
