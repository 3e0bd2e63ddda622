package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/frcmap/season-map/internal/locate"
)

var collisionsFile string

var collisionsCmd = &cobra.Command{
	Use:   "collisions",
	Short: "Report archive entries that share an exact coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			a   locate.Archive
			err error
		)
		if collisionsFile != "" {
			a, err = locate.LoadArchiveFile(collisionsFile)
			if err != nil {
				return err
			}
		} else {
			a = locate.NewArchiveStore(cfg.Paths.Archive).LoadTeams()
		}
		printCollisions(cmd.OutOrStdout(), locate.FindCollisions(a))
		return nil
	},
}

func init() {
	collisionsCmd.Flags().StringVar(&collisionsFile, "file", "", "archive file (default latest team archive)")
	rootCmd.AddCommand(collisionsCmd)
}

func printCollisions(w io.Writer, groups []locate.CollisionGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "no collisions")
		return
	}
	total := 0
	for _, g := range groups {
		total += len(g.Keys)
		fmt.Fprintf(w, "%d at (%.6f, %.6f):", len(g.Keys), g.Lat, g.Lng)
		for _, k := range g.Keys {
			fmt.Fprintf(w, " %s", k)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d groups, %d entries\n", len(groups), total)
}
