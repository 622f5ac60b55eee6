package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lowlife.exe.dev/game"
)

func newItemsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Print the item catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := game.LoadCatalog()
			if err != nil {
				return err
			}
			list := cat.List()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSLOT\tWEIGHT\tTAGS")
			for _, t := range list {
				slot := string(t.Slot)
				if slot == "" {
					slot = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n", t.ID, t.Name, t.Type, slot, t.BaseWeight, strings.Join(t.Tags, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
