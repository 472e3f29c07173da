package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"katalog/internal/importer"
	"katalog/internal/validation"

	"github.com/spf13/cobra"
)

// fileReport is the validation outcome for one input file.
type fileReport struct {
	File    string              `json:"file"`
	Valid   bool                `json:"valid"`
	Results []validation.Result `json:"results"`
}

func newValidateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check product records in JSON or YAML files without storing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := validation.New()
			reports := make([]fileReport, 0, len(args))
			for _, path := range args {
				products, err := importer.Load(path)
				if err != nil {
					return err
				}
				report := v.ValidateAll(products)
				reports = append(reports, fileReport{File: path, Valid: report.Valid(), Results: report.Results})
			}

			if err := printReports(cmd.OutOrStdout(), rt.output, reports); err != nil {
				return err
			}
			for _, r := range reports {
				if !r.Valid {
					cmd.SilenceUsage = true
					return errInvalidRecords
				}
			}
			return nil
		},
	}
}

func printReports(w io.Writer, output string, reports []fileReport) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	checked, invalid := 0, 0
	for _, r := range reports {
		for _, res := range r.Results {
			checked++
			if res.Violations.Valid() {
				continue
			}
			invalid++
			for _, v := range res.Violations {
				fmt.Fprintf(w, "%s[%d]: %s: %s\n", r.File, res.Index, v.Field, v.Message)
			}
		}
	}
	fmt.Fprintf(w, "%d records checked, %d invalid\n", checked, invalid)
	return nil
}
