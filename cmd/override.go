package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/locate"
)

var overrideFile string

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Edit the manual location override files",
}

var overrideAddCmd = &cobra.Command{
	Use:   "add <team> <lat> <lng>",
	Short: "Pin a team to a coordinate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := overrideFile
		if path == "" {
			path = cfg.Paths.TeamOverrides
		}
		key, err := addTeamOverride(path, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	overrideAddCmd.Flags().StringVar(&overrideFile, "file", "", "team override file (default from config)")
	overrideCmd.AddCommand(overrideAddCmd)
	rootCmd.AddCommand(overrideCmd)
}

// addTeamOverride sets the coordinates of frc<team> in the override file at
// path, keeping the comment and any other fields of the entry.
func addTeamOverride(path, team, latArg, lngArg string) (string, error) {
	num, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(team), "frc"))
	if err != nil || num <= 0 {
		return "", eris.Errorf("override: invalid team number %q", team)
	}
	lat, err := parseCoordinate(latArg)
	if err != nil {
		return "", eris.Wrap(err, "override: latitude")
	}
	lng, err := parseCoordinate(lngArg)
	if err != nil {
		return "", eris.Wrap(err, "override: longitude")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", eris.Errorf("override: coordinate %v,%v out of range", lat, lng)
	}

	f, err := locate.ReadOverrideFile(path)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("frc%d", num)
	o := f.Entries[key]
	o.Lat, o.Lng = &lat, &lng
	f.Set(key, o)
	if err := f.Write(path); err != nil {
		return "", err
	}

	zap.L().Info("override set", zap.String("key", key), zap.Float64("lat", lat), zap.Float64("lng", lng))
	return key, nil
}

// parseCoordinate accepts thousands separators, as in "1,234.5". NaN and
// infinities are rejected.
func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
