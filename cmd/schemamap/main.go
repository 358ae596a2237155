// Command schemamap maps spreadsheet headers to the canonical manufacturing
// schema from the command line: useful for checking a CSV before uploading
// it, and for debugging catalog changes.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/tier"
)

var asJSON bool

var rootCmd = &cobra.Command{
	Use:   "schemamap",
	Short: "Map spreadsheet headers to the canonical manufacturing schema",
	Long: `schemamap inspects the header row of a CSV file and reports how its
columns map onto the canonical schema, which data tier the file supports,
and whether the mapping passes validation.`,
	SilenceUsage: true,
}

var mapCmd = &cobra.Command{
	Use:   "map <file.csv>",
	Short: "Auto-map the file's headers and print the suggested mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, err := readHeaders(args[0])
		if err != nil {
			return err
		}

		reg := catalog.Default()
		res := mapping.NewResolver(reg).AutoMap(headers)
		tr := tier.NewClassifier(reg).Classify(mapping.TargetFields(res.Mappings))

		if asJSON {
			return printJSON(map[string]any{
				"mappings":         res.Mappings,
				"unmapped_columns": res.UnmappedColumns,
				"confidence":       res.Confidence,
				"data_tier":        tr,
			})
		}

		for _, m := range res.Mappings {
			if m.TargetField == "" {
				fmt.Printf("  %-30s -> (unmapped)\n", m.SourceColumn)
				continue
			}
			fmt.Printf("  %-30s -> %-25s %.2f (%s)\n", m.SourceColumn, m.TargetField, m.Confidence, m.MatchType)
		}
		fmt.Printf("\nmapped %d/%d columns, mean confidence %.2f\n",
			len(headers)-len(res.UnmappedColumns), len(headers), res.Confidence)
		fmt.Println(mapping.BuildReport(reg, res, tr).TierMessage)
		return nil
	},
}

var tierCmd = &cobra.Command{
	Use:   "tier <file.csv>",
	Short: "Report the data tier the file's columns support",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, err := readHeaders(args[0])
		if err != nil {
			return err
		}

		reg := catalog.Default()
		res := mapping.NewResolver(reg).AutoMap(headers)
		tr := tier.NewClassifier(reg).Classify(mapping.TargetFields(res.Mappings))

		if asJSON {
			return printJSON(tr)
		}

		fmt.Printf("tier %d (%s): %s\n", tr.Tier, tr.Info.Name, tr.Info.Description)
		fmt.Printf("coverage: %.0f%%\n", tr.Coverage*100)
		if len(tr.Info.Analyzers) > 0 {
			fmt.Printf("analyzers: %s\n", strings.Join(tr.Info.Analyzers, ", "))
		}
		if len(tr.MissingForNextTier) > 0 {
			fmt.Printf("missing for next tier: %s\n", strings.Join(tr.MissingForNextTier, ", "))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Auto-map the file's headers and validate the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, err := readHeaders(args[0])
		if err != nil {
			return err
		}

		reg := catalog.Default()
		res := mapping.NewResolver(reg).AutoMap(headers)
		vr := mapping.NewValidator(reg).Validate(res.Mappings)

		if asJSON {
			return printJSON(vr)
		}

		for _, e := range vr.Errors {
			fmt.Printf("error: %s\n", e)
		}
		for _, w := range vr.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if vr.Valid {
			fmt.Printf("valid mapping, tier %d (%s)\n", vr.DataTier.Tier, vr.DataTier.Info.Name)
			return nil
		}
		return fmt.Errorf("mapping is not valid")
	},
}

// readHeaders reads only the first record of a CSV file.
func readHeaders(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header row of %s: %w", path, err)
	}
	return headers, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	rootCmd.AddCommand(mapCmd, tierCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
