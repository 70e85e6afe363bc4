package main

import (
	"fmt"
	"strconv"

	"meetmap/pkg/location"
	"meetmap/pkg/nearby"

	"github.com/spf13/cobra"
)

var distanceCmd = &cobra.Command{
	Use:   "distance <lat1> <lon1> <lat2> <lon2>",
	Short: "Print the great-circle distance between two points",
	Args:  cobra.ExactArgs(4),
	// negative coordinates would otherwise parse as flags
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var v [4]float64
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("argument %d: %w", i+1, err)
			}
			v[i] = f
		}
		d := location.HaversineKm(
			location.GeoPoint{Latitude: v[0], Longitude: v[1]},
			location.GeoPoint{Latitude: v[2], Longitude: v[3]},
		)
		fmt.Fprintln(cmd.OutOrStdout(), nearby.FormatDistance(d))
		return nil
	},
}
