package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/logisim/app"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List configured vehicles with their travel time to each city",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fleet, err := app.BuildFleet(cfg.Fleet, cfg.Routes)
	if err != nil {
		return err
	}
	dests := append([]string{cfg.Simulation.Hub}, cfg.Simulation.ForaneCities...)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tKIND\tCAPACITY KG\tLOCATION\t%s\n", strings.Join(dests, "\t"))
	for _, v := range fleet.All() {
		hours := make([]string, len(dests))
		for i, d := range dests {
			hours[i] = fmt.Sprintf("%.2fh", v.Profile().TransportHours(d, v.MaxCapacity(), v.MaxCapacity()))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%s\n", v.ID(), v.Kind(), v.MaxCapacity(), v.Location(), strings.Join(hours, "\t"))
	}
	return tw.Flush()
}
