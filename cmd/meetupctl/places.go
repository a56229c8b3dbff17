package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func placesCmd() *cobra.Command {
	var (
		filter   string
		lat, lng float64
	)
	cmd := &cobra.Command{
		Use:   "places",
		Short: "Find hangout spots near a coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient(cmd.Context(), nil)
			if err != nil {
				return err
			}
			list, err := client.Places(cmd.Context(), filter, lat, lng)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No places found nearby.")
				return nil
			}
			for i, p := range list {
				rating := "-"
				if p.Rating != nil {
					rating = fmt.Sprintf("%.1f", *p.Rating)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  ★ %s  %s\n    %s\n", i+1, p.Name, rating, p.Vicinity, p.MapsURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all, cafe, library, park or study")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
