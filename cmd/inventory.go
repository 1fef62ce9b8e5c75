package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/model"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Seed the configured warehouse and print its stock",
	RunE:  runInventory,
}

func init() {
	inventoryCmd.Flags().String("category", "", "list units of one category")
	inventoryCmd.Flags().Int("limit", 20, "maximum units listed with --category")
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	wh, err := inventory.New(cfg.Warehouse.MaxCapacityKG,
		inventory.WithName(cfg.Warehouse.Name),
		inventory.WithFactory(model.NewFactory(cfg.Warehouse.Seed)))
	if err != nil {
		return err
	}
	wh.Fill(cfg.Warehouse.InitialFillKG)

	out := cmd.OutOrStdout()
	if name, _ := cmd.Flags().GetString("category"); name != "" {
		c, ok := model.ParseCategory(name)
		if !ok {
			return fmt.Errorf("unknown category %q", name)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		for _, p := range wh.List(c, limit) {
			fmt.Fprintf(out, "%s\t%s\t%.2f kg\t%s\n", p.ID, p.Name, p.Weight, p.Size())
		}
		return nil
	}

	fmt.Fprintf(out, "warehouse %s: %.2f/%.2f kg (%.1f%%), %d units\n",
		wh.Name(), wh.CurrentLoad(), wh.MaxCapacity(), wh.OccupancyPercent(), wh.TotalUnits())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tUNITS\tWEIGHT KG")
	summary := wh.Summary()
	for _, c := range model.Categories() {
		st := summary[c]
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", c, st.Units, st.WeightKG)
	}
	return tw.Flush()
}
