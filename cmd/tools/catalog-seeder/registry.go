// cmd/tools/catalog-seeder/registry.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atio-knowledge-base/pkg/registry"
)

var registryPath string

func init() {
	registryCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "activity registry file")
	registryCmd.AddCommand(registryValidateCmd)
	registryCmd.AddCommand(registryStatusCmd)
	rootCmd.AddCommand(registryCmd)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and maintain the activity registry",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the activity registry loads and every input schema compiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registry %s is valid: %d activities\n", reg.Version, len(reg.Activities))
		return nil
	},
}

var registryStatusCmd = &cobra.Command{
	Use:   "set-status <task-type> <status>",
	Short: "Set the implementation status of one activity",
	Long: `Set the implementation status of one activity and save the registry.
Status is one of planned, in-progress, completed or verified.

Examples:
  catalog-seeder registry set-status rank-by-profile verified`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setStatus(registryPath, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
		return nil
	},
}

func setStatus(path, taskType, status string) error {
	switch status {
	case registry.StatusPlanned, registry.StatusInProgress, registry.StatusCompleted, registry.StatusVerified:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}
	activity, err := reg.Lookup(taskType)
	if err != nil {
		return err
	}
	activity.ImplementationStatus = status
	return reg.Save(path)
}
