package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/orgrank/internal/domain/intent"
	"github.com/kailas-cloud/orgrank/internal/repository/catalog"
)

var errValidation = errors.New("catalog has problems")

var validateCmd = &cobra.Command{
	Use:   "validate [catalog.json]",
	Short: "Check a catalog file for structural problems",
	Long: `Decode a catalog file and report its path, top-level keys, record count
and every problem found (duplicate ids, missing coordinates, empty or
non-canonical causes). Exits non-zero when any problem is found.
Without an argument the configured catalog.path is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var synonyms map[string][]string
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		cfg, err := loadConfig()
		switch {
		case err == nil:
			synonyms = cfg.Reference.Causes
			if path == "" {
				path = cfg.Catalog.Path
			}
		case path == "":
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}

		rep, err := catalog.Validate(data, intent.NewParser(synonyms))
		if err != nil {
			return fmt.Errorf("invalid catalog JSON: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path=%s\n", abs)
		fmt.Fprintf(out, "nonprofit_count=%d\n", rep.Count)
		fmt.Fprintf(out, "keys=%v\n", rep.Keys)
		for _, p := range rep.Problems {
			fmt.Fprintf(out, "problem: %s\n", p)
		}
		if !rep.OK() {
			return fmt.Errorf("%w: %d found", errValidation, len(rep.Problems))
		}
		fmt.Fprintln(out, "OK")
		return nil
	},
}
