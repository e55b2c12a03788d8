// cmd/tools/catalog-seeder/validate.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"atio-knowledge-base/internal/common/validation"
	"atio-knowledge-base/internal/models"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check technology records before loading them",
	Long: `Check every technology record against the catalog rules: required
fields, known category, cost and maturity values, a parsable adoption rate,
at least one region and valid evidence links. Ids must be unique.

Examples:
  # Check the built-in seed
  catalog-seeder validate

  # Check a custom catalog
  catalog-seeder validate --file technologies.json`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	records, err := readRecords(seedFile)
	if err != nil {
		return err
	}

	if err := validateRecords(records); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return fmt.Errorf("catalog validation failed")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d technology records are valid\n", len(records))
	return nil
}

// validateRecords joins one error per invalid or duplicate record.
func validateRecords(records []models.Technology) error {
	if len(records) == 0 {
		return errors.New("catalog contains no technologies")
	}

	var errs []error
	seen := make(map[int]bool, len(records))
	for i, t := range records {
		if err := validation.ValidateStruct(t); err != nil {
			errs = append(errs, fmt.Errorf("record %d (id %d): %w", i, t.ID, err))
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("record %d: duplicate id %d", i, t.ID))
		}
		seen[t.ID] = true
	}
	return errors.Join(errs...)
}
