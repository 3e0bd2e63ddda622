package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var validateFlags struct {
	directory string
	quiet     bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every JSON file under a directory parses",
	RunE: func(cmd *cobra.Command, args []string) error {
		invalid, checked, err := validateJSONTree(cmd.Context(), validateFlags.directory)
		if err != nil {
			return err
		}
		reportValidation(cmd.OutOrStdout(), invalid, checked, validateFlags.quiet)
		if len(invalid) > 0 {
			return eris.Errorf("validate: %d of %d files invalid", len(invalid), checked)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.directory, "directory", ".", "directory to scan")
	validateCmd.Flags().BoolVar(&validateFlags.quiet, "quiet", false, "only report invalid files")
	rootCmd.AddCommand(validateCmd)
}

// validateJSONTree checks every *.json file under root, skipping .git. It
// returns the invalid paths in sorted order and the number of files checked.
func validateJSONTree(ctx context.Context, root string) ([]string, int, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".json" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, 0, eris.Wrapf(err, "validate: walk %s", root)
	}

	var (
		mu      sync.Mutex
		invalid []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "validate: read %s", path)
			}
			if !json.Valid(data) {
				mu.Lock()
				invalid = append(invalid, path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	sort.Strings(invalid)
	return invalid, len(files), nil
}

func reportValidation(w io.Writer, invalid []string, checked int, quiet bool) {
	for _, p := range invalid {
		fmt.Fprintf(w, "invalid: %s\n", p)
	}
	if !quiet {
		fmt.Fprintf(w, "%d files checked, %d invalid\n", checked, len(invalid))
	}
}
